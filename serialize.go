package eventgraph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

// Snapshot schema. Field order is the stable serialization contract; the
// named wire keys never change even when the Go identifiers do.

type graphSnapshot struct {
	Sentences []*Sentence      `json:"sentences"`
	Events    []*eventSnapshot `json:"events"`
}

type eventSnapshot struct {
	EventID int                 `json:"event_id"`
	SID     string              `json:"sid"`
	SSID    int                 `json:"ssid"`
	Rel     []*relationSnapshot `json:"rel"`

	Surf                                   string `json:"surf"`
	SurfWithMark                           string `json:"surf_with_mark"`
	Mrphs                                  string `json:"mrphs"`
	MrphsWithMark                          string `json:"mrphs_with_mark"`
	NormalizedMrphs                        string `json:"normalized_mrphs"`
	NormalizedMrphsWithMark                string `json:"normalized_mrphs_with_mark"`
	NormalizedMrphsWithoutExophora         string `json:"normalized_mrphs_without_exophora"`
	NormalizedMrphsWithMarkWithoutExophora string `json:"normalized_mrphs_with_mark_without_exophora"`
	Reps                                   string `json:"reps"`
	RepsWithMark                           string `json:"reps_with_mark"`
	NormalizedReps                         string `json:"normalized_reps"`
	NormalizedRepsWithMark                 string `json:"normalized_reps_with_mark"`

	ContentRepList []string     `json:"content_rep_list"`
	PAS            *pasSnapshot `json:"pas"`
	Features       *Features    `json:"features"`
}

type relationSnapshot struct {
	EventID  int    `json:"event_id"` // head event
	Label    string `json:"label"`
	Surf     string `json:"surf"`
	Reliable bool   `json:"reliable"`
	HeadTid  int    `json:"head_tid"`
}

type pasSnapshot struct {
	Predicate *Predicate             `json:"predicate"`
	Argument  map[string][]*Argument `json:"argument"`
}

// snapshot converts the graph into its serializable form.
func (g *EventGraph) snapshot() *graphSnapshot {
	snap := &graphSnapshot{Sentences: g.sentences}
	for _, event := range g.events {
		es := &eventSnapshot{
			EventID: event.ID,
			SID:     event.SID,
			SSID:    event.SSID,
			Rel:     []*relationSnapshot{},

			Surf:                                   event.Surf,
			SurfWithMark:                           event.SurfWithMark,
			Mrphs:                                  event.Mrphs,
			MrphsWithMark:                          event.MrphsWithMark,
			NormalizedMrphs:                        event.NormalizedMrphs,
			NormalizedMrphsWithMark:                event.NormalizedMrphsWithMark,
			NormalizedMrphsWithoutExophora:         event.NormalizedMrphsWithoutExophora,
			NormalizedMrphsWithMarkWithoutExophora: event.NormalizedMrphsWithMarkWithoutExophora,
			Reps:                                   event.Reps,
			RepsWithMark:                           event.RepsWithMark,
			NormalizedReps:                         event.NormalizedReps,
			NormalizedRepsWithMark:                 event.NormalizedRepsWithMark,

			ContentRepList: event.ContentRepList,
			PAS:            &pasSnapshot{Predicate: event.PAS.Predicate, Argument: event.PAS.Arguments},
			Features:       event.Features,
		}
		if es.ContentRepList == nil {
			es.ContentRepList = []string{}
		}
		if es.PAS.Argument == nil {
			es.PAS.Argument = map[string][]*Argument{}
		}
		for _, r := range event.Outgoing {
			es.Rel = append(es.Rel, &relationSnapshot{
				EventID:  r.HeadID,
				Label:    r.Label,
				Surf:     r.Surface,
				Reliable: r.Reliable,
				HeadTid:  r.HeadTagID,
			})
		}
		snap.Events = append(snap.Events, es)
	}
	return snap
}

// Save writes the graph's snapshot form as JSON.
func (g *EventGraph) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g.snapshot()); err != nil {
		return fmt.Errorf("eventgraph: encode snapshot: %w", err)
	}
	return nil
}

// SaveFile writes the graph's snapshot form to a JSON file.
func (g *EventGraph) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("eventgraph: create snapshot file: %w", err)
	}
	defer f.Close()
	if err := g.Save(f); err != nil {
		return err
	}
	return f.Close()
}

// Load reads a snapshot back into a graph. The result is degraded-fidelity:
// every materialized field round-trips exactly, but the live parse backing
// is gone, so alternate variants cannot be recomputed.
func Load(r io.Reader) (*EventGraph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("eventgraph: read snapshot: %w", err)
	}
	var snap graphSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	if err := validateSnapshot(data); err != nil {
		return nil, err
	}
	return fromSnapshot(&snap)
}

// LoadFile reads a snapshot file back into a graph.
func LoadFile(path string) (*EventGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("eventgraph: open snapshot file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

var requiredEventKeys = []string{
	"event_id", "sid", "ssid", "rel",
	"surf", "surf_with_mark", "mrphs", "mrphs_with_mark",
	"normalized_mrphs", "normalized_mrphs_with_mark",
	"normalized_mrphs_without_exophora", "normalized_mrphs_with_mark_without_exophora",
	"reps", "reps_with_mark", "normalized_reps", "normalized_reps_with_mark",
	"content_rep_list", "pas", "features",
}

// validateSnapshot checks the presence of every required key. Unmarshalling
// alone would silently zero-fill missing fields; a missing or null key is a
// schema mismatch and fatal for the whole document.
func validateSnapshot(data []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	for _, key := range []string{"sentences", "events"} {
		if _, ok := top[key]; !ok {
			return fmt.Errorf("%w: missing key %q", ErrSchemaMismatch, key)
		}
	}
	var events []map[string]json.RawMessage
	if err := json.Unmarshal(top["events"], &events); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	for i, event := range events {
		for _, key := range requiredEventKeys {
			if _, ok := event[key]; !ok {
				return fmt.Errorf("%w: event %d missing key %q", ErrSchemaMismatch, i, key)
			}
		}
		for _, key := range []string{"pas", "features"} {
			if string(event[key]) == "null" {
				return fmt.Errorf("%w: event %d null key %q", ErrSchemaMismatch, i, key)
			}
		}
		var pas map[string]json.RawMessage
		if err := json.Unmarshal(event["pas"], &pas); err != nil {
			return fmt.Errorf("%w: event %d pas: %v", ErrSchemaMismatch, i, err)
		}
		for _, key := range []string{"predicate", "argument"} {
			if raw, ok := pas[key]; !ok || string(raw) == "null" {
				return fmt.Errorf("%w: event %d pas missing key %q", ErrSchemaMismatch, i, key)
			}
		}
	}
	return nil
}

func fromSnapshot(snap *graphSnapshot) (*EventGraph, error) {
	g := &EventGraph{
		sentences:    snap.Sentences,
		eventByID:    make(map[int]*Event),
		fromSnapshot: true,
	}
	for _, es := range snap.Events {
		cases := make([]string, 0, len(es.PAS.Argument))
		for c, args := range es.PAS.Argument {
			cases = append(cases, c)
			for _, argument := range args {
				argument.Case = c
			}
		}
		sort.Slice(cases, func(i, j int) bool {
			if caseRank(cases[i]) != caseRank(cases[j]) {
				return caseRank(cases[i]) < caseRank(cases[j])
			}
			return cases[i] < cases[j]
		})
		event := &Event{
			ID:   es.EventID,
			SID:  es.SID,
			SSID: es.SSID,

			Surf:                                   es.Surf,
			SurfWithMark:                           es.SurfWithMark,
			Mrphs:                                  es.Mrphs,
			MrphsWithMark:                          es.MrphsWithMark,
			NormalizedMrphs:                        es.NormalizedMrphs,
			NormalizedMrphsWithMark:                es.NormalizedMrphsWithMark,
			NormalizedMrphsWithoutExophora:         es.NormalizedMrphsWithoutExophora,
			NormalizedMrphsWithMarkWithoutExophora: es.NormalizedMrphsWithMarkWithoutExophora,
			Reps:                                   es.Reps,
			RepsWithMark:                           es.RepsWithMark,
			NormalizedReps:                         es.NormalizedReps,
			NormalizedRepsWithMark:                 es.NormalizedRepsWithMark,

			ContentRepList: es.ContentRepList,
			ParentID:       -1,
			PAS:            &PAS{Predicate: es.PAS.Predicate, Arguments: es.PAS.Argument, cases: cases},
			Features:       es.Features,
		}
		g.events = append(g.events, event)
		g.eventByID[event.ID] = event
	}

	// Relations are rewired in a second pass, once every head can resolve.
	for i, es := range snap.Events {
		modifier := g.events[i]
		for _, rs := range es.Rel {
			head, ok := g.eventByID[rs.EventID]
			if !ok {
				return nil, fmt.Errorf("%w: relation target %d not in document", ErrSchemaMismatch, rs.EventID)
			}
			relation := &Relation{
				Modifier:   modifier,
				Head:       head,
				ModifierID: modifier.ID,
				HeadID:     head.ID,
				HeadTagID:  rs.HeadTid,
				Label:      rs.Label,
				Surface:    rs.Surf,
				Reliable:   rs.Reliable,
			}
			modifier.Outgoing = append(modifier.Outgoing, relation)
			head.Incoming = append(head.Incoming, relation)
			g.relations = append(g.relations, relation)
		}
	}
	return g, nil
}
