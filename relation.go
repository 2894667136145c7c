package eventgraph

// Relation labels. Discourse and clausal-function relations are
// parametrized; the rest are fixed.
const (
	labelAdnominal       = "連体修飾"
	labelComplement      = "補文"
	labelParallel        = "並列"
	labelDependency      = "係り受け"
	discourseLabelPrefix = "談話関係:"
)

// Relation is a directed edge from a modifier event to its head event.
type Relation struct {
	Modifier *Event `json:"-"`
	Head     *Event `json:"-"`

	ModifierID int    // serial id of the modifier event
	HeadID     int    // serial id of the head event
	HeadTagID  int    // tag the modifier clause attaches to, -1 if none
	Label      string
	Surface    string // explicit marker, when the label has one
	Reliable   bool   // parent link was the unique nearest preceding event
}

func newRelation(modifier, head *Event, headTagID int, label, surface string, reliable bool) *Relation {
	return &Relation{
		Modifier:   modifier,
		Head:       head,
		ModifierID: modifier.ID,
		HeadID:     head.ID,
		HeadTagID:  headTagID,
		Label:      label,
		Surface:    surface,
		Reliable:   reliable,
	}
}

func modifiersByLabel(relations []*Relation, label string) []*Event {
	var events []*Event
	for _, r := range relations {
		if r.Label == label {
			events = append(events, r.Modifier)
		}
	}
	return events
}

// resolveRelations finds an event's parent event and classifies the
// relation. The label cascade is evaluated in strict priority order and the
// first match wins; only discourse relations may emit more than one edge.
func (b *builder) resolveRelations(event *Event) []*Relation {
	var relations []*Relation

	// Find the nearest enclosing parent event by walking up the dependency
	// chain. Targets that were folded into a later event still resolve: the
	// walk matches against both head and end tags of later-created events.
	var parent *Event
	for tid := event.Head.ParentID; tid > 0; {
		for _, cand := range b.ssidEvents[event.SSID] {
			if cand.ID <= event.ID {
				continue
			}
			if tid == cand.Head.ID || tid == cand.End.ID {
				parent = cand
				break
			}
		}
		if parent != nil {
			break
		}
		tag := b.tag(event.SSID, tid)
		if tag == nil {
			break
		}
		tid = tag.ParentID
	}
	if parent != nil {
		event.ParentID = parent.ID
		event.parent = parent
		parent.children = append(parent.children, event)
	}

	// The dependency is unambiguous only when this event and its parent are
	// the last two events of the sentence in creation order: no sibling
	// could have been skipped over.
	reliable := false
	if sentEvents := b.ssidEvents[event.SSID]; len(sentEvents) >= 2 && parent != nil {
		last := sentEvents[len(sentEvents)-1]
		secondLast := sentEvents[len(sentEvents)-2]
		reliable = secondLast.ID == event.ID && last.ID == event.ParentID
	}

	clauseBreak := event.End.Features.Get("節-区切")

	if parent != nil && clauseBreak == labelAdnominal {
		return append(relations,
			newRelation(event, parent, event.End.ParentID, labelAdnominal, "", reliable))
	}

	if parent != nil && clauseBreak == labelComplement {
		return append(relations,
			newRelation(event, parent, event.End.ParentID, labelComplement, "", reliable))
	}

	// Discourse relations bypass the parent walk entirely: the head event is
	// addressed by sentence distance and tag id, possibly across sentences.
	for _, dr := range event.End.DiscourseRelations() {
		head := b.stidEvent[stid{event.SSID + dr.SentenceDistance, dr.TagID}]
		if head == nil {
			continue
		}
		relations = append(relations,
			newRelation(event, head, -1, discourseLabelPrefix+dr.Label, "", false))
	}
	if len(relations) > 0 {
		return relations
	}

	if parent == nil {
		return nil // sentence root: a valid terminal state, not an error
	}

	if fns := event.End.ClauseFunctions(); len(fns) > 0 {
		for _, fn := range fns {
			relations = append(relations,
				newRelation(event, parent, event.End.ParentID, fn.Label, fn.Surface, reliable))
		}
		return relations
	}

	if event.End.DepType == "P" {
		return append(relations, newRelation(event, parent, -1, labelParallel, "", reliable))
	}

	return append(relations, newRelation(event, parent, -1, labelDependency, "", reliable))
}
