package knp

import (
	"fmt"
	"strings"
)

// Morpheme is one morpheme line of KNP output.
type Morpheme struct {
	Surface  string // 見出し
	Reading  string // 読み
	Lemma    string // 原形
	POS      string // 品詞
	SubPOS   string // 品詞細分類
	ConjType string // 活用型
	ConjForm string // 活用形
	Semantic string // 意味情報
	Features FeatureSet
}

// parseMorpheme parses a morpheme line, e.g.
//
//	走った はしった 走る 動詞 2 * 0 子音動詞ラ行 10 タ形 8 "代表表記:走る/はしる" <代表表記:走る/はしる><活用語>
//
// The semantic-information column is either NIL or a double-quoted string
// that may contain spaces; everything after it is the feature string.
func parseMorpheme(line string) (*Morpheme, error) {
	fields := strings.SplitN(line, " ", 12)
	if len(fields) < 11 {
		return nil, fmt.Errorf("short morpheme line %q", line)
	}
	m := &Morpheme{
		Surface:  fields[0],
		Reading:  fields[1],
		Lemma:    fields[2],
		POS:      fields[3],
		SubPOS:   fields[5],
		ConjType: fields[7],
		ConjForm: fields[9],
	}
	rest := ""
	if len(fields) == 12 {
		rest = fields[11]
	}
	if strings.HasPrefix(rest, `"`) {
		if end := strings.Index(rest[1:], `"`); end >= 0 {
			m.Semantic = rest[1 : end+1]
			rest = strings.TrimLeft(rest[end+2:], " ")
		}
	} else if strings.HasPrefix(rest, "NIL") {
		rest = strings.TrimLeft(strings.TrimPrefix(rest, "NIL"), " ")
	}
	m.Features = ParseFeatures(rest)
	return m, nil
}

// Repname returns the canonical lemma/reading representation (代表表記),
// or the empty string when the morpheme has none.
func (m *Morpheme) Repname() string {
	if rep := m.Features.Get("代表表記"); rep != "" {
		return rep
	}
	for _, field := range strings.Fields(m.Semantic) {
		if strings.HasPrefix(field, "代表表記:") {
			return strings.TrimPrefix(field, "代表表記:")
		}
	}
	return ""
}

// RepnameOrDefault returns Repname, falling back to "surface/surface".
func (m *Morpheme) RepnameOrDefault() string {
	if rep := m.Repname(); rep != "" {
		return rep
	}
	return m.Surface + "/" + m.Surface
}

// IsContentWord reports whether the morpheme is flagged as a content word
// (内容語) or semi-content word (準内容語).
func (m *Morpheme) IsContentWord() bool {
	return m.Features.Has("内容語") || m.Features.Has("準内容語")
}
