// Package eventgraph converts Japanese dependency and case-structure
// analyses into a document-level graph of events. An event is a clause with
// a predicate-argument structure; relations between events carry typed
// labels such as adnominal modification, sentential complement, parallel and
// discourse relations.
package eventgraph

import (
	"log/slog"

	"github.com/kotonoha-nlp/eventgraph/knp"
)

// EventGraph is a document-level view over events and their relations.
type EventGraph struct {
	sentences []*Sentence
	events    []*Event
	relations []*Relation
	eventByID map[int]*Event

	analyses     []*knp.Sentence
	fromSnapshot bool
}

// Option configures a Build call.
type Option func(*buildOptions)

type buildOptions struct {
	cfg Config
	log *slog.Logger
}

// WithConfig overrides the default build configuration.
func WithConfig(cfg Config) Option {
	return func(o *buildOptions) { o.cfg = cfg }
}

// WithLogger sets the logger used for build diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(o *buildOptions) { o.log = log }
}

// Build constructs an event graph from parsed sentences. The pipeline runs
// in fixed stages: phrase indexing, event segmentation, relation resolution,
// token dispatch and string finalization. Serial ids are local to the call;
// concurrent builds never share state.
func Build(analyses []*knp.Sentence, opts ...Option) (*EventGraph, error) {
	if len(analyses) == 0 {
		return nil, ErrEmptyDocument
	}

	options := buildOptions{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(&options)
	}
	b := newBuilder(options.cfg, options.log)

	g := &EventGraph{
		analyses:  analyses,
		eventByID: b.evidEvent,
	}

	b.indexPhrases(analyses)
	for ssid, analysis := range analyses {
		sentence := newSentence(ssid, analysis)
		g.sentences = append(g.sentences, sentence)
		g.events = append(g.events, b.segmentEvents(sentence)...)
	}
	b.indexEvents(g.events)

	for _, event := range g.events {
		relations := b.resolveRelations(event)
		event.Outgoing = append(event.Outgoing, relations...)
		for _, relation := range relations {
			relation.Head.Incoming = append(relation.Head.Incoming, relation)
		}
		g.relations = append(g.relations, relations...)
	}

	for _, event := range g.events {
		b.dispatchTokens(event)
	}
	for _, event := range g.events {
		event.PAS.finalize()
		event.finalizeStrings()
	}

	b.log.Info("built event graph",
		"sentences", len(g.sentences), "events", len(g.events), "relations", len(g.relations))
	return g, nil
}

// Sentences returns the document's sentences in order.
func (g *EventGraph) Sentences() []*Sentence { return g.sentences }

// Events returns every event of the document in serial-id order.
func (g *EventGraph) Events() []*Event { return g.events }

// Relations returns every relation of the document, grouped by modifier
// event in serial-id order.
func (g *EventGraph) Relations() []*Relation { return g.relations }

// Event returns the event with the given serial id, or nil.
func (g *EventGraph) Event(evid int) *Event { return g.eventByID[evid] }

// FromSnapshot reports whether the graph was loaded from a serialized
// snapshot rather than built from live analyses.
func (g *EventGraph) FromSnapshot() bool { return g.fromSnapshot }

// Analyses returns the parsed sentences backing the graph. Snapshot-loaded
// graphs have no parse backing and return ErrSnapshotGraph.
func (g *EventGraph) Analyses() ([]*knp.Sentence, error) {
	if g.fromSnapshot {
		return nil, ErrSnapshotGraph
	}
	return g.analyses, nil
}
