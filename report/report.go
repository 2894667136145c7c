// Package report exports an event graph as an Excel workbook with one sheet
// each for sentences, events and relations.
package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kotonoha-nlp/eventgraph"
)

var (
	sentenceHeader = []interface{}{"sid", "ssid", "surf", "mrphs", "reps"}
	eventHeader    = []interface{}{
		"event_id", "sid", "ssid", "surf", "surf_with_mark",
		"normalized_mrphs", "normalized_reps", "predicate", "predicate_type",
		"arguments", "tense", "negation", "modality",
	}
	relationHeader = []interface{}{
		"modifier_event_id", "head_event_id", "label", "surf", "reliable", "head_tid",
	}
)

// Write renders the workbook and saves it at the given path.
func Write(path string, g *eventgraph.EventGraph) error {
	f, err := Workbook(g)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("report: saving workbook: %w", err)
	}
	return nil
}

// Workbook builds the in-memory workbook for an event graph.
func Workbook(g *eventgraph.EventGraph) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := writeSheet(f, "Sentences", sentenceHeader, sentenceRows(g)); err != nil {
		return nil, err
	}
	if err := writeSheet(f, "Events", eventHeader, eventRows(g)); err != nil {
		return nil, err
	}
	if err := writeSheet(f, "Relations", relationHeader, relationRows(g)); err != nil {
		return nil, err
	}

	// Drop the default sheet so the workbook opens on Sentences.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("report: removing default sheet: %w", err)
	}
	return f, nil
}

func writeSheet(f *excelize.File, name string, header []interface{}, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("report: creating sheet %s: %w", name, err)
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("report: writing header of %s: %w", name, err)
	}
	for i, row := range rows {
		cell := "A" + strconv.Itoa(i+2)
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("report: writing row %d of %s: %w", i+2, name, err)
		}
	}
	return nil
}

func sentenceRows(g *eventgraph.EventGraph) [][]interface{} {
	rows := make([][]interface{}, 0, len(g.Sentences()))
	for _, sentence := range g.Sentences() {
		rows = append(rows, []interface{}{
			sentence.SID, sentence.SSID, sentence.Surf, sentence.Mrphs, sentence.Reps,
		})
	}
	return rows
}

func eventRows(g *eventgraph.EventGraph) [][]interface{} {
	rows := make([][]interface{}, 0, len(g.Events()))
	for _, event := range g.Events() {
		rows = append(rows, []interface{}{
			event.ID, event.SID, event.SSID, event.Surf, event.SurfWithMark,
			event.NormalizedMrphs, event.NormalizedReps,
			event.PAS.Predicate.StandardReps, event.PAS.Predicate.Type,
			argumentSummary(event), event.Features.Tense, event.Features.Negation,
			strings.Join(event.Features.Modality, ","),
		})
	}
	return rows
}

func relationRows(g *eventgraph.EventGraph) [][]interface{} {
	rows := make([][]interface{}, 0, len(g.Relations()))
	for _, relation := range g.Relations() {
		rows = append(rows, []interface{}{
			relation.ModifierID, relation.HeadID, relation.Label,
			relation.Surface, relation.Reliable, relation.HeadTagID,
		})
	}
	return rows
}

func argumentSummary(event *eventgraph.Event) string {
	cases := make([]string, 0, len(event.PAS.Arguments))
	for c := range event.PAS.Arguments {
		cases = append(cases, c)
	}
	sort.Strings(cases)

	var parts []string
	for _, c := range cases {
		for _, argument := range event.PAS.Arguments[c] {
			parts = append(parts, argument.NormalizedSurf+":"+c)
		}
	}
	return strings.Join(parts, ", ")
}
