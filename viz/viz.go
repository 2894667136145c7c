// Package viz renders an event graph as a Graphviz DOT document. Events
// become box nodes grouped four to a row per sentence, relations become
// labeled edges, and each document cluster can carry its original text.
package viz

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/emicklei/dot"
	"golang.org/x/text/width"

	"github.com/kotonoha-nlp/eventgraph"
)

// eventsPerRow is the maximum number of event nodes in one cluster row.
const eventsPerRow = 4

// Options control what a rendered graph includes.
type Options struct {
	// ExcludeDetail drops the PAS and feature lines from event nodes.
	ExcludeDetail bool
	// ExcludeOriginalText drops the sentence text cluster.
	ExcludeOriginalText bool
}

// Render converts an event graph into a DOT graph.
func Render(g *eventgraph.EventGraph, opts Options) *dot.Graph {
	canvas := dot.NewGraph(dot.Directed)

	dids, sentencesByDID, eventsByDID := groupByDocument(g)

	cluster := 0
	var tops []dot.Node
	for _, did := range dids {
		if !opts.ExcludeOriginalText {
			sub := canvas.Subgraph(fmt.Sprintf("head_%d", cluster), dot.ClusterOption{})
			sub.Attr("color", "white")
			var lines []string
			for _, sentence := range sentencesByDID[did] {
				lines = append(lines, sentence.Surf)
			}
			sub.Node(fmt.Sprintf("head_%d", cluster)).
				Attr("shape", "record").
				Attr("color", "white").
				Attr("label", leftJustified(lines))
			tops = append(tops, topNode(sub, cluster))
			cluster++
		}

		for _, row := range groupIntoRows(eventsByDID[did]) {
			sub := canvas.Subgraph(fmt.Sprintf("row_%d", cluster), dot.ClusterOption{})
			sub.Attr("label", "")
			sub.Attr("style", "invis")
			for i := len(row) - 1; i >= 0; i-- {
				event := row[i]
				lines := nodeLines(event, opts)
				sub.Node(nodeName(event.ID)).
					Attr("shape", "box").
					Attr("label", leftJustified(lines)).
					Attr("width", fmt.Sprintf("%.2f", nodeWidth(lines)))
			}
			tops = append(tops, topNode(sub, cluster))
			cluster++
		}
	}

	// Invisible edges between cluster anchors keep the rows stacked in
	// document order.
	for i := 0; i+1 < len(tops); i++ {
		canvas.Edge(tops[i], tops[i+1]).Attr("style", "invis")
	}

	for _, relation := range g.Relations() {
		edge := canvas.Edge(
			canvas.Node(nodeName(relation.ModifierID)),
			canvas.Node(nodeName(relation.HeadID)),
		)
		edge.Attr("label", edgeLabel(relation))
		edge.Attr("weight", "1")
		edge.Attr("constraint", "false")
	}

	return canvas
}

// Write renders the graph and writes the DOT document.
func Write(w io.Writer, g *eventgraph.EventGraph, opts Options) error {
	if _, err := io.WriteString(w, Render(g, opts).String()); err != nil {
		return fmt.Errorf("viz: write dot: %w", err)
	}
	return nil
}

// WriteFile renders the graph into a .dot file, creating parent directories
// as needed.
func WriteFile(path string, g *eventgraph.EventGraph, opts Options) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("viz: create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("viz: create output file: %w", err)
	}
	defer f.Close()
	if err := Write(f, g, opts); err != nil {
		return err
	}
	return f.Close()
}

func nodeName(evid int) string {
	return fmt.Sprintf("node_%d", evid)
}

func topNode(sub *dot.Graph, cluster int) dot.Node {
	return sub.Node(fmt.Sprintf("top_%d", cluster)).
		Attr("shape", "none").
		Attr("label", "").
		Attr("width", "0")
}

// groupByDocument splits sentences and events by document id, taken as the
// sentence id up to its last hyphen.
func groupByDocument(g *eventgraph.EventGraph) ([]string, map[string][]*eventgraph.Sentence, map[string][]*eventgraph.Event) {
	var dids []string
	sentences := make(map[string][]*eventgraph.Sentence)
	events := make(map[string][]*eventgraph.Event)
	for _, sentence := range g.Sentences() {
		did := documentID(sentence.SID)
		if _, seen := sentences[did]; !seen {
			dids = append(dids, did)
		}
		sentences[did] = append(sentences[did], sentence)
	}
	for _, event := range g.Events() {
		did := documentID(event.SID)
		events[did] = append(events[did], event)
	}
	return dids, sentences, events
}

func documentID(sid string) string {
	if i := strings.LastIndex(sid, "-"); i >= 0 {
		return sid[:i]
	}
	return sid
}

// groupIntoRows buckets events by sentence and splits each bucket into rows
// of at most eventsPerRow.
func groupIntoRows(events []*eventgraph.Event) [][]*eventgraph.Event {
	bySID := make(map[string][]*eventgraph.Event)
	var sids []string
	for _, event := range events {
		if _, seen := bySID[event.SID]; !seen {
			sids = append(sids, event.SID)
		}
		bySID[event.SID] = append(bySID[event.SID], event)
	}
	sort.Strings(sids)

	var rows [][]*eventgraph.Event
	for _, sid := range sids {
		group := bySID[sid]
		for i := 0; i < len(group); i += eventsPerRow {
			end := i + eventsPerRow
			if end > len(group) {
				end = len(group)
			}
			rows = append(rows, group[i:end])
		}
	}
	return rows
}

func nodeLines(event *eventgraph.Event, opts Options) []string {
	lines := []string{"[surf] " + event.SurfWithMark}
	if opts.ExcludeDetail {
		return lines
	}
	if pas := pasLine(event); pas != "" {
		lines = append(lines, pas)
	}
	if feature := featureLine(event); feature != "" {
		lines = append(lines, feature)
	}
	return lines
}

func pasLine(event *eventgraph.Event) string {
	predicate := event.PAS.Predicate.StandardReps
	if event.PAS.Predicate.Type != "" {
		predicate += ":" + event.PAS.Predicate.Type
	}

	cases := make([]string, 0, len(event.PAS.Arguments))
	for c := range event.PAS.Arguments {
		cases = append(cases, c)
	}
	sort.Slice(cases, func(i, j int) bool {
		if caseRank(cases[i]) != caseRank(cases[j]) {
			return caseRank(cases[i]) < caseRank(cases[j])
		}
		return cases[i] < cases[j]
	})

	parts := []string{predicate}
	for _, c := range cases {
		if strings.Contains(c, "外の関係") {
			continue
		}
		for _, argument := range event.PAS.Arguments[c] {
			parts = append(parts, argument.HeadReps+":"+c)
		}
	}
	return "[pas] " + strings.Join(parts, ",  ")
}

var vizCaseOrder = map[string]int{"ガ２": 0, "ガ": 1, "ヲ": 2, "ニ": 3}

func caseRank(c string) int {
	if rank, ok := vizCaseOrder[c]; ok {
		return rank
	}
	return 99
}

func featureLine(event *eventgraph.Event) string {
	var parts []string
	if event.Features.Negation {
		parts = append(parts, "否定")
	}
	if event.Features.Tense != "" {
		parts = append(parts, "時制:"+event.Features.Tense)
	}
	for _, modality := range event.Features.Modality {
		parts = append(parts, "モダリティ: "+modality)
	}
	if len(parts) == 0 {
		return ""
	}
	return "[feature] " + strings.Join(parts, ",  ")
}

func edgeLabel(relation *eventgraph.Relation) string {
	label := relation.Label
	label = strings.ReplaceAll(label, "談話関係", "談")
	label = strings.ReplaceAll(label, "連体修飾", "▼")
	label = strings.ReplaceAll(label, "補文", "■")
	label = strings.ReplaceAll(label, "係り受け", "")
	if label != "" && relation.Surface != "" {
		label = label + ":" + relation.Surface
	}
	return "   " + label + "   "
}

// leftJustified joins label lines with Graphviz left-justification escapes.
// The result is pre-quoted so the writer keeps the escapes verbatim.
func leftJustified(lines []string) dot.Literal {
	escaped := make([]string, 0, len(lines))
	for _, line := range lines {
		escaped = append(escaped, strings.ReplaceAll(line, `"`, `\"`))
	}
	return dot.Literal(`"` + strings.Join(escaped, `\l\n`) + `\l"`)
}

// nodeWidth estimates a box width from the widest line, counting East Asian
// full-width characters as two columns.
func nodeWidth(lines []string) float64 {
	widest := 0
	for _, line := range lines {
		w := 0
		for _, r := range line {
			switch width.LookupRune(r).Kind() {
			case width.EastAsianFullwidth, width.EastAsianWide, width.EastAsianAmbiguous:
				w += 2
			default:
				w++
			}
		}
		if w > widest {
			widest = w
		}
	}
	return float64(widest) * 0.10
}
