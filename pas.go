package eventgraph

import (
	"sort"
	"strings"

	"github.com/kotonoha-nlp/eventgraph/knp"
)

// PAS is an event's predicate-argument structure: one predicate and the
// arguments that fill its case slots, keyed by case marker.
type PAS struct {
	Predicate *Predicate             `json:"predicate"`
	Arguments map[string][]*Argument `json:"argument"`

	cases []string // canonical case iteration order
}

// Predicate is the core of an event, wrapping the clause-head phrase.
// The string fields are materialized at finalization; until then the
// predicate is backed by its head token.
type Predicate struct {
	Surf            string `json:"surf"`
	NormalizedSurf  string `json:"normalized_surf"`
	Mrphs           string `json:"mrphs"`
	NormalizedMrphs string `json:"normalized_mrphs"`
	Reps            string `json:"reps"`
	NormalizedReps  string `json:"normalized_reps"`
	StandardReps    string `json:"standard_reps"`
	Type            string `json:"type"`

	AdnominalEventIDs            []int          `json:"adnominal_event_ids"`
	SententialComplementEventIDs []int          `json:"sentential_complement_event_ids"`
	Children                     []*ChildPhrase `json:"children"`

	headToken *Token
}

// Argument fills one case slot of a predicate.
type Argument struct {
	Case string `json:"-"`

	Surf            string `json:"surf"`
	NormalizedSurf  string `json:"normalized_surf"`
	Mrphs           string `json:"mrphs"`
	NormalizedMrphs string `json:"normalized_mrphs"`
	Reps            string `json:"reps"`
	NormalizedReps  string `json:"normalized_reps"`
	HeadReps        string `json:"head_reps"`

	EntityID         int    `json:"eid"`
	Flag             string `json:"flag"`
	SentenceDistance int    `json:"sdist"`

	AdnominalEventIDs            []int          `json:"adnominal_event_ids"`
	SententialComplementEventIDs []int          `json:"sentential_complement_event_ids"`
	Children                     []*ChildPhrase `json:"children"`

	raw       *knp.RawArgument
	headToken *Token
}

// ChildPhrase is one dependent phrase of a predicate or argument span,
// rendered in every surface variant.
type ChildPhrase struct {
	Surf                         string `json:"surf"`
	NormalizedSurf               string `json:"normalized_surf"`
	Mrphs                        string `json:"mrphs"`
	NormalizedMrphs              string `json:"normalized_mrphs"`
	Reps                         string `json:"reps"`
	NormalizedReps               string `json:"normalized_reps"`
	AdnominalEventIDs            []int  `json:"adnominal_event_ids"`
	SententialComplementEventIDs []int  `json:"sentential_complement_event_ids"`
	Modifier                     bool   `json:"modifier"`
	Possessive                   bool   `json:"possessive"`
}

// newPAS assembles an event's predicate-argument structure from the clause
// head's parser annotation. Argument ordering follows the configuration:
// positional order sorts case slots ガ２/ガ/ヲ/ニ first and fillers by text
// position, insertion order keeps the parser's emission order.
func newPAS(event *Event, cfg Config) *PAS {
	pas := &PAS{
		Predicate: &Predicate{Type: event.Head.Features.Get("用言")},
		Arguments: make(map[string][]*Argument),
	}
	raw := event.Head.PAS
	if raw == nil {
		return pas
	}

	pas.cases = append(pas.cases, raw.Cases...)
	if cfg.ArgumentOrder == ArgumentOrderPosition {
		sort.SliceStable(pas.cases, func(i, j int) bool {
			return caseRank(pas.cases[i]) < caseRank(pas.cases[j])
		})
	}
	for _, c := range pas.cases {
		args := append([]*knp.RawArgument{}, raw.Arguments[c]...)
		if cfg.ArgumentOrder == ArgumentOrderPosition {
			sort.SliceStable(args, func(i, j int) bool {
				si := event.SSID - args[i].SentenceDistance
				sj := event.SSID - args[j].SentenceDistance
				if si != sj {
					return si < sj
				}
				return args[i].TagID < args[j].TagID
			})
		}
		for _, arg := range args {
			pas.Arguments[c] = append(pas.Arguments[c], &Argument{
				Case:             c,
				EntityID:         arg.EntityID,
				Flag:             string(arg.Flag),
				SentenceDistance: arg.SentenceDistance,
				raw:              arg,
			})
		}
	}
	return pas
}

// finalize materializes every string variant. Runs once, after relation
// resolution and token dispatch, so the mark annotations are already in
// place.
func (p *PAS) finalize() {
	p.Predicate.finalize()
	for _, c := range p.cases {
		for _, argument := range p.Arguments[c] {
			argument.finalize()
		}
	}
}

func (p *Predicate) finalize() {
	p.Mrphs = p.buildMrphs()
	p.NormalizedMrphs = p.Mrphs
	p.Surf = strings.ReplaceAll(p.Mrphs, " ", "")
	p.NormalizedSurf = p.Surf
	p.Reps = p.buildReps()
	p.NormalizedReps = p.Reps
	p.StandardReps = p.buildStandardReps()
	p.AdnominalEventIDs, p.SententialComplementEventIDs = modifyingEventIDs(p.headToken)
	p.Children = childPhrases(p.headToken, truncatePredicateMorphemes)
}

// buildMrphs renders the predicate's canonical tokenized form: the span
// between the 用言表記先頭 and 用言表記末尾 morpheme markers over the
// compound phrase, with the final morpheme replaced by its infinitive.
func (p *Predicate) buildMrphs() string {
	var parts []string
	within := false
	for _, token := range p.headToken.Modifiees(true) {
		if token.Tag == nil {
			continue
		}
		for _, m := range token.Tag.Morphemes {
			if m.Features.Has("用言表記先頭") {
				within = true
			}
			if m.Features.Has("用言表記末尾") {
				parts = append(parts, m.Lemma)
				return strings.Join(parts, " ")
			}
			if within {
				parts = append(parts, m.Surface)
			}
		}
	}
	return strings.Join(parts, " ")
}

func (p *Predicate) buildReps() string {
	for _, token := range p.headToken.Modifiees(true) {
		if token.Tag == nil {
			continue
		}
		if reps := token.Tag.Features.Get("用言代表表記"); reps != "" {
			return reps
		}
	}
	morphemes := spanMorphemes(p.headToken, true)
	return formatReps(truncatePredicateMorphemes(morphemes))
}

func (p *Predicate) buildStandardReps() string {
	for _, token := range p.headToken.Modifiees(true) {
		if token.Tag == nil {
			continue
		}
		if reps := token.Tag.Features.Get("標準用言代表表記"); reps != "" {
			return reps
		}
	}
	return p.Reps
}

func (a *Argument) finalize() {
	a.Mrphs = a.text(modeMrphs, false)
	a.NormalizedMrphs = a.text(modeMrphs, true)
	a.Surf = strings.ReplaceAll(a.Mrphs, " ", "")
	a.NormalizedSurf = strings.ReplaceAll(a.NormalizedMrphs, " ", "")
	a.Reps = a.text(modeReps, false)
	a.NormalizedReps = a.text(modeReps, true)
	a.HeadReps = a.buildHeadReps()
	a.AdnominalEventIDs, a.SententialComplementEventIDs = modifyingEventIDs(a.headToken)
	a.Children = childPhrases(a.headToken, truncateArgumentMorphemes)
}

const (
	modeMrphs = "mrphs"
	modeReps  = "reps"
)

// text renders the argument's head span. Omitted arguments are bracketed
// with their case marker in hiragana; overt ones fold in the compound-phrase
// parents and, under truncation, drop adjunct morphemes.
func (a *Argument) text(mode string, truncate bool) string {
	token := a.headToken
	if token.Omitted() {
		var base string
		if token.Kind == TokenExophora {
			base = token.Literal
		} else {
			morphemes := truncateArgumentMorphemes(token.Tag.Morphemes)
			base = formatMorphemes(morphemes, mode, true)
		}
		c := katakanaToHiragana(a.Case)
		if mode == modeReps {
			c = c + "/" + c
		}
		if truncate {
			return "[" + base + "]"
		}
		return "[" + base + " " + c + "]"
	}

	morphemes := spanMorphemes(token, true)
	if truncate {
		return formatMorphemes(truncateArgumentMorphemes(morphemes), mode, true)
	}
	return formatMorphemes(morphemes, mode, false)
}

// buildHeadReps prefers the parser's head representative annotation; omitted
// arguments keep their brackets.
func (a *Argument) buildHeadReps() string {
	if a.headToken.Tag != nil {
		if reps := a.headToken.Tag.HeadRepname(); reps != "" {
			if a.headToken.Omitted() {
				return "[" + reps + "]"
			}
			return reps
		}
	}
	return a.NormalizedReps
}

// spanMorphemes collects the morphemes of a token, optionally extended over
// its compound-phrase parents.
func spanMorphemes(token *Token, includeModifiees bool) []*knp.Morpheme {
	var morphemes []*knp.Morpheme
	if token.Tag != nil {
		morphemes = append(morphemes, token.Tag.Morphemes...)
	}
	if includeModifiees {
		for _, parent := range token.Modifiees(false) {
			if parent.Tag != nil {
				morphemes = append(morphemes, parent.Tag.Morphemes...)
			}
		}
	}
	return morphemes
}

// truncatePredicateMorphemes drops adjunct morphemes after the last
// conjugating word. Idempotent: a truncated span truncates to itself.
func truncatePredicateMorphemes(morphemes []*knp.Morpheme) []*knp.Morpheme {
	for i := len(morphemes) - 1; i >= 0; i-- {
		m := morphemes[i]
		switch {
		case m.POS == "助動詞" && m.Lemma == "です" && i > 0 && morphemes[i-1].POS == "形容詞":
			// 美しいです -> 美しい
			return morphemes[:i]
		case m.POS == "判定詞" && m.Surface == "じゃ" && i > 0 && morphemes[i-1].Features.Has("活用語"):
			// 使えないじゃん -> 使えない
			return morphemes[:i]
		case (m.Features.Has("活用語") || m.Features.Has("用言意味表記末尾")) &&
			m.Lemma != "のだ" && m.Lemma != "んだ":
			return morphemes[:i+1]
		}
	}
	return morphemes
}

// truncateArgumentMorphemes keeps the content-word prefix: everything up to
// the first particle, punctuation or copula that follows a content word.
func truncateArgumentMorphemes(morphemes []*knp.Morpheme) []*knp.Morpheme {
	var kept []*knp.Morpheme
	seenContent := false
	for _, m := range morphemes {
		isContent := m.POS != "助詞" && m.POS != "特殊" && m.POS != "判定詞"
		if !isContent && seenContent {
			break
		}
		seenContent = seenContent || isContent
		kept = append(kept, m)
	}
	return kept
}

func formatMorphemes(morphemes []*knp.Morpheme, mode string, normalize bool) string {
	if mode == modeReps {
		return formatReps(morphemes)
	}
	return formatSurfaces(morphemes, normalize)
}

func formatReps(morphemes []*knp.Morpheme) string {
	parts := make([]string, 0, len(morphemes))
	for _, m := range morphemes {
		parts = append(parts, m.RepnameOrDefault())
	}
	return strings.Join(parts, " ")
}

// formatSurfaces joins morpheme surfaces; with normalize the final morpheme
// becomes its infinitive, except ぬ-negation which would otherwise turn
// できません into できませぬ.
func formatSurfaces(morphemes []*knp.Morpheme, normalize bool) string {
	parts := make([]string, 0, len(morphemes))
	for i, m := range morphemes {
		if normalize && i == len(morphemes)-1 && !(m.POS == "助動詞" && m.Lemma == "ぬ") {
			parts = append(parts, m.Lemma)
		} else {
			parts = append(parts, m.Surface)
		}
	}
	return strings.Join(parts, " ")
}

// modifyingEventIDs gathers the ids of events attaching to any phrase of the
// head span, split by relation kind.
func modifyingEventIDs(head *Token) (adnominal, complement []int) {
	if head == nil {
		return nil, nil
	}
	for _, token := range head.Modifiees(true) {
		adnominal = append(adnominal, token.adnominalEvids...)
		complement = append(complement, token.complementEvids...)
	}
	sort.Ints(adnominal)
	sort.Ints(complement)
	return adnominal, complement
}

// childPhrases renders the span's dependents, farthest first, using the
// owner's truncation rule.
func childPhrases(head *Token, truncate func([]*knp.Morpheme) []*knp.Morpheme) []*ChildPhrase {
	if head == nil {
		return nil
	}
	modifiers := head.Modifiers(false)
	children := make([]*ChildPhrase, 0, len(modifiers))
	for i := len(modifiers) - 1; i >= 0; i-- {
		token := modifiers[i]
		if token.Tag == nil {
			continue
		}
		morphemes := token.Tag.Morphemes
		truncated := truncate(morphemes)
		mrphs := formatSurfaces(morphemes, false)
		normalizedMrphs := formatSurfaces(truncated, true)
		children = append(children, &ChildPhrase{
			Surf:                         strings.ReplaceAll(mrphs, " ", ""),
			NormalizedSurf:               strings.ReplaceAll(normalizedMrphs, " ", ""),
			Mrphs:                        mrphs,
			NormalizedMrphs:              normalizedMrphs,
			Reps:                         formatReps(morphemes),
			NormalizedReps:               formatReps(truncated),
			AdnominalEventIDs:            append([]int{}, token.adnominalEvids...),
			SententialComplementEventIDs: append([]int{}, token.complementEvids...),
			Modifier:                     token.Tag.Features.Has("修飾"),
			Possessive:                   token.Tag.Features.Get("係") == "ノ格",
		})
	}
	return children
}

// katakanaToHiragana converts katakana case markers (ガ, ヲ, ...) to their
// hiragana reading for omitted-argument rendering.
func katakanaToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 'ァ' && r <= 'ヶ' {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}
