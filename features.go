package eventgraph

import "github.com/kotonoha-nlp/eventgraph/knp"

// Features carries the clause-level semantic annotations of an event's
// predicate: modality, tense, polarity and aspectual class.
type Features struct {
	Modality   []string `json:"modality"`
	Tense      string   `json:"tense"`
	Negation   bool     `json:"negation"`
	State      string   `json:"state"`
	Complement bool     `json:"complement"`
	Level      string   `json:"-"` // informational only, not part of the snapshot schema
}

// buildFeatures reads the predicate annotations off the event head. When the
// head's parent is a functional basic phrase of the same predicate, the
// annotations live there instead and the read is redirected.
func buildFeatures(head *knp.Tag) *Features {
	features := &Features{Tense: "unknown", Modality: []string{}}

	target := functionalTag(head)
	if tense, ok := target.Features.GetPrefix("時制"); ok {
		features.Tense = tense
	}
	features.Negation = target.Features.Has("否定表現")
	switch {
	case target.Features.Has("状態述語"):
		features.State = "状態述語"
	case target.Features.Has("動態述語"):
		features.State = "動態述語"
	}
	features.Complement = target.Features.Has("補文")
	features.Level = target.Features.Get("レベル")

	features.Modality = append(features.Modality, target.Features.ScanPrefix("モダリティ")...)
	if parent := head.Parent; parent != nil &&
		(parent.Features.Has("弱用言") || parent.Features.Has("思う能動")) {
		features.Modality = append(features.Modality, "推量・伝聞")
	}
	return features
}

// functionalTag returns the tag that functionally carries the predicate's
// annotations: the parent, when it is a predicative functional basic phrase
// with its own argument structure, otherwise the tag itself.
func functionalTag(tag *knp.Tag) *knp.Tag {
	if p := tag.Parent; p != nil && p.PAS != nil &&
		p.Features.Has("用言") && !p.Features.Has("修飾") && p.Features.Has("機能的基本句") {
		return p
	}
	return tag
}
