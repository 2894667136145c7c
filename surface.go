package eventgraph

import (
	"sort"
	"strings"

	"github.com/kotonoha-nlp/eventgraph/knp"
)

// renderOptions selects one of the event surface variants.
type renderOptions struct {
	mode          string // modeMrphs or modeReps
	mark          bool   // include ▼ ■ | marks and parenthesized adjuncts
	space         bool   // separate morphemes with spaces
	truncate      bool   // drop adjunct strings after normalization
	needsExophora bool   // include extra-textual referents
}

// renderPhrase is one phrase of an event's realization. The child flag is
// event-relative: every argument phrase renders as a child so that only the
// predicate span is normalized.
type renderPhrase struct {
	token   *Token
	isChild bool
}

// finalizeStrings materializes the event's surface variants. Runs once per
// event after relations and token annotations are in place.
func (e *Event) finalizeStrings() {
	phrases := e.renderPhrases()

	e.Surf = renderEvent(phrases, renderOptions{mode: modeMrphs, needsExophora: true})
	e.SurfWithMark = renderEvent(phrases, renderOptions{mode: modeMrphs, mark: true, needsExophora: true})
	e.Mrphs = renderEvent(phrases, renderOptions{mode: modeMrphs, space: true, needsExophora: true})
	e.MrphsWithMark = renderEvent(phrases, renderOptions{mode: modeMrphs, mark: true, space: true, needsExophora: true})
	e.NormalizedMrphs = renderEvent(phrases, renderOptions{mode: modeMrphs, space: true, truncate: true, needsExophora: true})
	e.NormalizedMrphsWithMark = renderEvent(phrases, renderOptions{mode: modeMrphs, mark: true, space: true, truncate: true, needsExophora: true})
	e.NormalizedMrphsWithoutExophora = renderEvent(phrases, renderOptions{mode: modeMrphs, space: true, truncate: true})
	e.NormalizedMrphsWithMarkWithoutExophora = renderEvent(phrases, renderOptions{mode: modeMrphs, mark: true, space: true, truncate: true})
	e.Reps = renderEvent(phrases, renderOptions{mode: modeReps, space: true, needsExophora: true})
	e.RepsWithMark = renderEvent(phrases, renderOptions{mode: modeReps, mark: true, space: true, needsExophora: true})
	e.NormalizedReps = renderEvent(phrases, renderOptions{mode: modeReps, space: true, truncate: true, needsExophora: true})
	e.NormalizedRepsWithMark = renderEvent(phrases, renderOptions{mode: modeReps, mark: true, space: true, truncate: true, needsExophora: true})
	e.ContentRepList = contentRepList(phrases)
}

// renderPhrases assembles the event's phrase list in canonical order.
// Arguments whose head span leaks outside the clause (a foreign clause head
// or end before this clause's head, or anything after its end) are dropped
// wholesale; omitted arguments always survive.
func (e *Event) renderPhrases() []*renderPhrase {
	var phrases []*renderPhrase
	for _, c := range e.PAS.cases {
		for _, argument := range e.PAS.Arguments[c] {
			head := argument.headToken
			if head == nil || !e.validArgumentSpan(head) {
				continue
			}
			for _, token := range head.Root().Modifiers(true) {
				phrases = append(phrases, &renderPhrase{token: token, isChild: true})
			}
		}
	}
	if head := e.PAS.Predicate.headToken; head != nil {
		for _, token := range head.Root().Modifiers(true) {
			phrases = append(phrases, &renderPhrase{token: token, isChild: token.IsChild})
		}
	}
	sort.SliceStable(phrases, func(i, j int) bool {
		return lessKey(phrases[i].token.key(), phrases[j].token.key())
	})
	return phrases
}

func (e *Event) validArgumentSpan(head *Token) bool {
	for _, token := range head.Modifiees(true) {
		if token.Omitted() {
			continue
		}
		if token.TID < e.Head.ID && (token.IsEventHead() || token.IsEventEnd()) {
			return false
		}
		if e.End.ID < token.TID {
			return false
		}
	}
	return true
}

// renderEvent realizes a phrase list as one string. Phrases are grouped by
// bunsetsu; omitted groups render bracketed and float to the front, marked
// groups carry ▼ (adnominal) or ■ (complement), and everything after the
// predicate's normalization point flows into the adjunct tail.
func renderEvent(phrases []*renderPhrase, opts renderOptions) string {
	joiner := ""
	if opts.space {
		joiner = " "
	}

	var omittedGroups, contentGroups, adjunctGroups []string
	normalized := false
	var prev *Token

	for _, group := range groupByBunsetsu(phrases) {
		exophora, omittedCase := "", ""
		needsAdnominal, needsComplement := false, false
		for _, p := range group {
			if p.token.Omitted() {
				omittedCase = p.token.OmittedCase
				exophora = p.token.Literal
			}
			if opts.mark && len(p.token.adnominalEvids) > 0 {
				needsAdnominal = true
			}
			if opts.mark && len(p.token.complementEvids) > 0 {
				needsComplement = true
			}
		}
		if !opts.needsExophora && exophora != "" {
			continue
		}

		var contentTokens, adjunctTokens []string
		for _, p := range group {
			needsSeparator := opts.mark && prev != nil &&
				prev.SSID == p.token.SSID && prev.TID+1 < p.token.TID &&
				!prev.Omitted() && !needsAdnominal && !needsComplement

			if normalized {
				// Everything after the normalization point is adjunct.
				adjunctTokens = append(adjunctTokens, phraseStrings(p.token, opts.mode)...)
			} else {
				content, adjunct, done := p.strings(opts)
				normalized = normalized || done
				if needsSeparator {
					separator := "|"
					if !opts.space {
						separator = " | "
					}
					content = append([]string{separator}, content...)
				}
				contentTokens = append(contentTokens, content...)
				adjunctTokens = append(adjunctTokens, adjunct...)
			}
			prev = p.token
		}

		if len(contentTokens) > 0 {
			s := strings.Join(contentTokens, joiner)
			switch {
			case omittedCase != "":
				omittedGroups = append(omittedGroups, "["+s+"]")
			case needsAdnominal:
				contentGroups = append(contentGroups, "▼ "+s)
			case needsComplement:
				contentGroups = append(contentGroups, "■ "+s)
			default:
				contentGroups = append(contentGroups, s)
			}
		}
		if len(adjunctTokens) > 0 {
			adjunctGroups = append(adjunctGroups, strings.Join(adjunctTokens, joiner))
		}
	}

	omitted := strings.Join(omittedGroups, "")
	content := strings.Join(contentGroups, joiner)
	adjunct := strings.Join(adjunctGroups, joiner)

	if omitted != "" {
		if content != "" {
			content = omitted + " " + content
		} else {
			content = omitted
		}
	}
	if opts.truncate || adjunct == "" {
		return content
	}
	if opts.mark {
		return content + " (" + adjunct + ")"
	}
	return content + joiner + adjunct
}

// groupByBunsetsu splits an ordered phrase list into runs that share an
// omitted-case rank, sentence and bunsetsu.
func groupByBunsetsu(phrases []*renderPhrase) [][]*renderPhrase {
	var groups [][]*renderPhrase
	var key [3]int
	for _, p := range phrases {
		k := [3]int{caseRank(p.token.OmittedCase), p.token.SSID, p.token.BID}
		if len(groups) == 0 || k != key {
			groups = append(groups, nil)
			key = k
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], p)
	}
	return groups
}

// strings renders one phrase into content and adjunct parts. Omitted phrases
// bracket later and carry their case marker; child phrases render verbatim;
// the predicate span is split at its normalization point.
func (p *renderPhrase) strings(opts renderOptions) (content, adjunct []string, normalized bool) {
	t := p.token
	if t.Omitted() {
		if t.Kind == TokenExophora {
			content = []string{t.Literal}
		} else {
			content, _, _ = normalizeArgumentPhrase(t.Tag.Morphemes, opts.mode, true)
		}
		c := katakanaToHiragana(t.OmittedCase)
		if opts.mode == modeReps {
			c = c + "/" + c
		}
		return append(content, c), nil, false
	}
	if p.isChild {
		return phraseStrings(t, opts.mode), nil, false
	}
	return normalizePredicatePhrase(t.Tag.Morphemes, opts.mode, opts.truncate)
}

func phraseStrings(t *Token, mode string) []string {
	if t.Tag == nil {
		if t.Literal != "" {
			return []string{t.Literal}
		}
		return nil
	}
	return morphemeStrings(t.Tag.Morphemes, mode)
}

func morphemeStrings(morphemes []*knp.Morpheme, mode string) []string {
	out := make([]string, 0, len(morphemes))
	for _, m := range morphemes {
		if mode == modeReps {
			out = append(out, m.RepnameOrDefault())
		} else {
			out = append(out, m.Surface)
		}
	}
	return out
}

// normalizePredicatePhrase splits a predicate phrase at the last conjugating
// word. Without truncation the split point still produces an adjunct tail
// but the kept morpheme stays in its surface form.
func normalizePredicatePhrase(morphemes []*knp.Morpheme, mode string, truncate bool) (content, adjunct []string, normalized bool) {
	slicer := -1
	useLemma := true
	for i := len(morphemes) - 1; i >= 0; i-- {
		m := morphemes[i]
		if m.POS == "助動詞" && m.Lemma == "です" && i > 0 && morphemes[i-1].POS == "形容詞" {
			slicer = i
			break
		}
		if m.POS == "判定詞" && m.Surface == "じゃ" && i > 0 && morphemes[i-1].Features.Has("活用語") {
			slicer = i
			break
		}
		if (m.Features.Has("活用語") || m.Features.Has("用言意味表記末尾")) &&
			m.Lemma != "のだ" && m.Lemma != "んだ" {
			slicer = i + 1
			if m.POS == "助動詞" && m.Lemma == "ぬ" {
				useLemma = false
			}
			break
		}
	}
	if !truncate {
		useLemma = false
	}

	if slicer == -1 {
		return morphemeStrings(morphemes, mode), nil, false
	}
	if mode == modeReps {
		return morphemeStrings(morphemes[:slicer], mode), morphemeStrings(morphemes[slicer:], mode), true
	}
	content = morphemeStrings(morphemes[:slicer-1], mode)
	last := morphemes[slicer-1]
	if useLemma {
		content = append(content, last.Lemma)
	} else {
		content = append(content, last.Surface)
	}
	return content, morphemeStrings(morphemes[slicer:], mode), true
}

// normalizeArgumentPhrase splits an argument phrase at the first adjunct
// morpheme that follows a content word.
func normalizeArgumentPhrase(morphemes []*knp.Morpheme, mode string, truncate bool) (content, adjunct []string, normalized bool) {
	slicer := -1
	seenContent := false
	for i, m := range morphemes {
		isAdjunct := m.POS == "助詞" || m.POS == "特殊" || m.POS == "判定詞"
		if isAdjunct && seenContent {
			slicer = i
			break
		}
		seenContent = seenContent || !isAdjunct
	}

	if slicer == -1 {
		if mode == modeReps {
			return morphemeStrings(morphemes, mode), nil, true
		}
		if len(morphemes) == 0 {
			return nil, nil, true
		}
		content = morphemeStrings(morphemes[:len(morphemes)-1], mode)
		last := morphemes[len(morphemes)-1]
		if truncate {
			content = append(content, last.Lemma)
		} else {
			content = append(content, last.Surface)
		}
		return content, nil, true
	}
	if mode == modeReps {
		return morphemeStrings(morphemes[:slicer], mode), morphemeStrings(morphemes[slicer:], mode), true
	}
	content = morphemeStrings(morphemes[:slicer-1], mode)
	last := morphemes[slicer-1]
	if truncate {
		content = append(content, last.Lemma)
	} else {
		content = append(content, last.Surface)
	}
	return content, morphemeStrings(morphemes[slicer:], mode), true
}

// contentRepList collects the representative strings of the event's content
// words in phrase order.
func contentRepList(phrases []*renderPhrase) []string {
	var reps []string
	for _, group := range groupByBunsetsu(phrases) {
		for _, p := range group {
			if p.token.Tag == nil {
				continue
			}
			for _, m := range p.token.Tag.Morphemes {
				if m.IsContentWord() {
					reps = append(reps, m.RepnameOrDefault())
				}
			}
		}
	}
	return reps
}
