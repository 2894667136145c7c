package knp

import (
	"strconv"
	"strings"
)

// Tag is a basic phrase (基本句) in a KNP dependency tree. Tags within a
// sentence form a tree via parent pointers; the dependency type is one of
// D (normal), P (parallel), A (apposition) or I (incomplete parallel).
type Tag struct {
	ID        int
	ParentID  int
	DepType   string
	Features  FeatureSet
	Morphemes []*Morpheme
	Parent    *Tag
	Children  []*Tag
	PAS       *PAS
}

// Surface returns the concatenated surface string of the tag.
func (t *Tag) Surface() string {
	var b strings.Builder
	for _, m := range t.Morphemes {
		b.WriteString(m.Surface)
	}
	return b.String()
}

// HeadRepname returns the representative string of the tag head, preferring
// the 主辞’代表表記 annotation over 主辞代表表記.
func (t *Tag) HeadRepname() string {
	if rep := t.Features.Get("主辞’代表表記"); rep != "" {
		return rep
	}
	return t.Features.Get("主辞代表表記")
}

// ParallelTags returns the chain of parent tags reachable over parallel
// dependencies, nearest first.
func (t *Tag) ParallelTags() []*Tag {
	var parallels []*Tag
	for cur := t; cur.DepType == "P" && cur.Parent != nil; cur = cur.Parent {
		parallels = append(parallels, cur.Parent)
	}
	return parallels
}

// IsClauseHead reports whether the tag (or a parallel parent) carries the
// clause-head marker (節-主辞).
func (t *Tag) IsClauseHead() bool {
	if t.Features.Has("節-主辞") {
		return true
	}
	for _, p := range t.ParallelTags() {
		if p.Features.Has("節-主辞") {
			return true
		}
	}
	return false
}

// IsClauseEnd reports whether the tag (or a parallel parent) carries the
// clause-end marker (節-区切).
func (t *Tag) IsClauseEnd() bool {
	if t.Features.Has("節-区切") {
		return true
	}
	for _, p := range t.ParallelTags() {
		if p.Features.Has("節-区切") {
			return true
		}
	}
	return false
}

// DiscourseRelation is a 談話関係 annotation on a clause-end tag, pointing
// at the clause-head tag of another event.
type DiscourseRelation struct {
	SentenceDistance int
	TagID            int
	SentenceID       string
	Label            string
}

// DiscourseRelations parses the 談話関係 annotations of the tag. The value
// format is "sdist/tid/sid:label"; malformed annotations are skipped.
func (t *Tag) DiscourseRelations() []DiscourseRelation {
	var rels []DiscourseRelation
	for _, body := range t.Features.ScanPrefix("談話関係") {
		target, label, ok := strings.Cut(body, ":")
		if !ok {
			continue
		}
		parts := strings.Split(target, "/")
		if len(parts) != 3 {
			continue
		}
		sdist, ok1 := atoi(parts[0])
		tid, ok2 := atoi(parts[1])
		if !ok1 || !ok2 {
			continue
		}
		rels = append(rels, DiscourseRelation{
			SentenceDistance: sdist,
			TagID:            tid,
			SentenceID:       parts[2],
			Label:            label,
		})
	}
	return rels
}

// ClauseFunction is a 節-機能 annotation, e.g. 条件 with the marker ば.
type ClauseFunction struct {
	Label   string
	Surface string
}

// ClauseFunctions parses the 節-機能 annotations of the tag.
func (t *Tag) ClauseFunctions() []ClauseFunction {
	var fns []ClauseFunction
	for _, body := range t.Features.ScanPrefix("節-機能") {
		label, surf, _ := strings.Cut(body, ":")
		fns = append(fns, ClauseFunction{Label: label, Surface: surf})
	}
	return fns
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}
