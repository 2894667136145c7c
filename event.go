package eventgraph

import "github.com/kotonoha-nlp/eventgraph/knp"

// Event is a semantically heavy clause with a predicate-argument structure.
// Structural fields are set at segmentation; the PAS and relations are
// attached by later pipeline stages; string variants are materialized once
// at finalization and never change afterwards. Only the relation lists keep
// growing while other events discover this one as their parent.
type Event struct {
	ID   int    // serial event id, dense 0..N-1 per build
	SID  string // original sentence id
	SSID int    // serial sentence id

	Start *knp.Tag // first tag of the clause span
	Head  *knp.Tag // tag bearing the clause-head marker
	End   *knp.Tag // tag bearing the clause-end marker

	Surf                                   string
	SurfWithMark                           string
	Mrphs                                  string
	MrphsWithMark                          string
	NormalizedMrphs                        string
	NormalizedMrphsWithMark                string
	NormalizedMrphsWithoutExophora         string
	NormalizedMrphsWithMarkWithoutExophora string
	Reps                                   string
	RepsWithMark                           string
	NormalizedReps                         string
	NormalizedRepsWithMark                 string
	ContentRepList                         []string

	ParentID int // serial id of the syntactic parent event, -1 for roots

	Outgoing []*Relation // relations where this event is the modifier
	Incoming []*Relation // relations where this event is the head

	PAS      *PAS
	Features *Features

	parent   *Event
	children []*Event
}

// Parent returns the event's syntactic parent event, or nil for a
// sentence-root event.
func (e *Event) Parent() *Event { return e.parent }

// ChildEvents returns the events whose resolved parent is this event.
func (e *Event) ChildEvents() []*Event { return e.children }

// AdnominalEvents returns the events modifying this one adnominally.
func (e *Event) AdnominalEvents() []*Event {
	return modifiersByLabel(e.Incoming, labelAdnominal)
}

// SententialComplementEvents returns the events complementing this one.
func (e *Event) SententialComplementEvents() []*Event {
	return modifiersByLabel(e.Incoming, labelComplement)
}

// IsAdnominal reports whether this event modifies its parent adnominally.
func (e *Event) IsAdnominal() bool {
	for _, r := range e.Outgoing {
		if r.Label == labelAdnominal {
			return true
		}
	}
	return false
}

// IsSententialComplement reports whether this event is a sentential
// complement of its parent.
func (e *Event) IsSententialComplement() bool {
	for _, r := range e.Outgoing {
		if r.Label == labelComplement {
			return true
		}
	}
	return false
}

// allTokens returns every token dispatched to the event, predicate and
// arguments alike.
func (e *Event) allTokens() []*Token {
	var tokens []*Token
	if e.PAS == nil {
		return nil
	}
	if head := e.PAS.Predicate.headToken; head != nil {
		tokens = append(tokens, head.Root().Modifiers(true)...)
	}
	for _, c := range e.PAS.cases {
		for _, argument := range e.PAS.Arguments[c] {
			if head := argument.headToken; head != nil {
				tokens = append(tokens, head.Root().Modifiers(true)...)
			}
		}
	}
	return tokens
}

// segmentEvents carves a sentence's tag sequence into events. A clause-end
// marker with no recorded clause-head emits nothing; the policy decides
// whether that is logged.
func (b *builder) segmentEvents(sentence *Sentence) []*Event {
	var events []*Event
	var start, head *knp.Tag
	for _, tag := range sentence.analysis.Tags {
		if start == nil {
			start = tag
		}
		if head == nil && tag.Features.Has("節-主辞") {
			head = tag
		}
		if tag.Features.Has("節-区切") {
			if head != nil {
				events = append(events, b.newEvent(sentence, start, head, tag))
			} else if b.cfg.HeadlessClausePolicy == HeadlessWarn {
				b.log.Warn("clause-end without clause-head, dropping segment",
					"sid", sentence.SID, "tid", tag.ID)
			}
			start, head = nil, nil
		}
	}
	return events
}

func (b *builder) newEvent(sentence *Sentence, start, head, end *knp.Tag) *Event {
	event := &Event{
		ID:       b.evid,
		SID:      sentence.SID,
		SSID:     sentence.SSID,
		Start:    start,
		Head:     head,
		End:      end,
		ParentID: -1,
	}
	b.evid++
	event.PAS = newPAS(event, b.cfg)
	event.Features = buildFeatures(head)
	return event
}
