package knp

import "strings"

// Bunsetsu is a base clause (文節): one or more tags with a shared
// dependency target.
type Bunsetsu struct {
	ID       int
	ParentID int
	DepType  string
	Features FeatureSet
	Tags     []*Tag
}

// Sentence is the KNP analysis of one sentence.
type Sentence struct {
	SID      string // original sentence id from the "# S-ID:" comment
	Comment  string // full comment line, without the leading "# "
	Bunsetsu []*Bunsetsu
	Tags     []*Tag
}

// Morphemes returns the sentence's morphemes in order.
func (s *Sentence) Morphemes() []*Morpheme {
	var ms []*Morpheme
	for _, t := range s.Tags {
		ms = append(ms, t.Morphemes...)
	}
	return ms
}

// Surface returns the surface string of the whole sentence.
func (s *Sentence) Surface() string {
	var b strings.Builder
	for _, m := range s.Morphemes() {
		b.WriteString(m.Surface)
	}
	return b.String()
}

// link wires parent/children pointers from the parsed parent ids.
func (s *Sentence) link() {
	for _, t := range s.Tags {
		if t.ParentID >= 0 && t.ParentID < len(s.Tags) {
			t.Parent = s.Tags[t.ParentID]
			t.Parent.Children = append(t.Parent.Children, t)
		}
	}
}
