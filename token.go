package eventgraph

import (
	"sort"

	"github.com/kotonoha-nlp/eventgraph/knp"
)

// TokenKind distinguishes how a token entered an event.
type TokenKind int

const (
	// TokenNormal wraps a tag that appears in the text and is linked to the
	// predicate by an overt dependency.
	TokenNormal TokenKind = iota
	// TokenZeroAnaphora wraps a tag recovered by zero-anaphora resolution;
	// realization brackets it.
	TokenZeroAnaphora
	// TokenExophora carries only a literal for an extra-textual referent
	// ("著者", "読者", ...); it has no tag and no children.
	TokenExophora
)

// caseOrder ranks grammatical cases for canonical token ordering.
var caseOrder = map[string]int{
	"ガ２": 0,
	"ガ":  1,
	"ヲ":  2,
	"ニ":  3,
}

func caseRank(c string) int {
	if rank, ok := caseOrder[c]; ok {
		return rank
	}
	return 99
}

// Token wraps a tag so that omitted and extra-textual referents can take
// part in an event's phrase set. Tokens form a small synthetic tree per
// predicate or argument, separate from the raw parse tree: children stop at
// clause boundaries and at phrases claimed by other parts of the event.
type Token struct {
	Kind        TokenKind
	Tag         *knp.Tag // nil for exophora
	SSID        int
	BID         int
	TID         int
	IsChild     bool
	Literal     string // exophora literal
	OmittedCase string // set for zero anaphora and exophora

	Parent   *Token
	Children []*Token

	event           *Event
	adnominalEvids  []int
	complementEvids []int
}

// key is the canonical sort key: omitted-case priority, then position.
func (t *Token) key() [4]int {
	return [4]int{caseRank(t.OmittedCase), t.SSID, t.BID, t.TID}
}

// positionKey ignores the case dimension; it identifies the phrase itself.
func (t *Token) positionKey() [3]int {
	return [3]int{t.SSID, t.BID, t.TID}
}

func lessKey(a, b [4]int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// Omitted reports whether the token stands in for an unrealized argument.
func (t *Token) Omitted() bool { return t.OmittedCase != "" }

// Root returns the top of the token's synthetic tree.
func (t *Token) Root() *Token {
	root := t
	for root.Parent != nil {
		root = root.Parent
	}
	return root
}

// Modifiees returns the chain of parents, nearest first.
func (t *Token) Modifiees(includeSelf bool) []*Token {
	var out []*Token
	if includeSelf {
		out = append(out, t)
	}
	for cur := t.Parent; cur != nil; cur = cur.Parent {
		out = append(out, cur)
	}
	return out
}

// Modifiers returns the token's descendants in canonical order.
func (t *Token) Modifiers(includeSelf bool) []*Token {
	var out []*Token
	if includeSelf {
		out = append(out, t)
	}
	var walk func(*Token)
	walk = func(cur *Token) {
		for _, child := range cur.Children {
			out = append(out, child)
			walk(child)
		}
	}
	walk(t)
	sortTokens(out)
	return out
}

// IsEventHead reports whether the token is the clause head of some event.
func (t *Token) IsEventHead() bool {
	return t.Tag != nil && t.Tag.IsClauseHead()
}

// IsEventEnd reports whether the token is the clause end of some event.
func (t *Token) IsEventEnd() bool {
	return t.Tag != nil && t.Tag.IsClauseEnd()
}

// AdnominalEventIDs returns the ids of events that modify this token
// adnominally.
func (t *Token) AdnominalEventIDs() []int { return t.adnominalEvids }

// SententialComplementEventIDs returns the ids of events that complement
// this token.
func (t *Token) SententialComplementEventIDs() []int { return t.complementEvids }

// annotate records which incoming relations of the owning event attach at
// this token. Omitted tokens never carry marks.
func (t *Token) annotate() {
	if t.Omitted() || t.event == nil {
		return
	}
	for _, r := range t.event.Incoming {
		if r.HeadTagID != t.TID {
			continue
		}
		switch r.Label {
		case labelAdnominal:
			t.adnominalEvids = append(t.adnominalEvids, r.ModifierID)
		case labelComplement:
			t.complementEvids = append(t.complementEvids, r.ModifierID)
		}
	}
}

func sortTokens(tokens []*Token) {
	sort.SliceStable(tokens, func(i, j int) bool {
		return lessKey(tokens[i].key(), tokens[j].key())
	})
}

// dispatchTokens resolves the phrase ownership of one event: argument head
// spans first, then a duplicate-removal pass, then the predicate span built
// against the cumulative sentinel set. The ordering is load-bearing: a later
// argument's head can legitimately be an earlier argument's child.
func (b *builder) dispatchTokens(event *Event) {
	var argumentHeads []*Token
	for _, c := range event.PAS.cases {
		for _, argument := range event.PAS.Arguments[c] {
			head := b.dispatchArgumentToken(event, argument)
			argumentHeads = append(argumentHeads, head)
			if head.Parent != nil {
				argumentHeads = append(argumentHeads, head.Parent)
			}
		}
	}

	resolveDuplication(argumentHeads)

	b.dispatchPredicateToken(event, argumentHeads)

	for _, token := range event.allTokens() {
		token.annotate()
	}
}

// dispatchArgumentToken resolves an argument's head span: the target tag
// (possibly absorbing a following compound-case particle) and its syntactic
// children, or a placeholder for omitted and extra-textual referents.
func (b *builder) dispatchArgumentToken(event *Event, argument *Argument) *Token {
	raw := argument.raw
	ssid := event.SSID - raw.SentenceDistance
	tid := raw.TagID
	bid := b.bid(ssid, tid)
	tag := b.tag(ssid, tid)

	var head *Token
	switch {
	case raw.Flag == knp.FlagExophora:
		head = &Token{Kind: TokenExophora, SSID: ssid, BID: bid, TID: tid,
			Literal: raw.Surface, OmittedCase: argument.Case, event: event}
	case raw.Flag == knp.FlagOmitted && tag != nil:
		head = &Token{Kind: TokenZeroAnaphora, Tag: tag, SSID: ssid, BID: bid, TID: tid,
			OmittedCase: argument.Case, event: event}
	case tag == nil:
		// Target missing from the phrase index; degrade to a placeholder so
		// one unresolvable argument does not void the event.
		b.log.Warn("argument target not found, degrading to placeholder",
			"ssid", ssid, "tid", tid, "case", argument.Case)
		head = &Token{Kind: TokenExophora, SSID: ssid, BID: bid, TID: tid,
			Literal: raw.Surface, OmittedCase: argument.Case, event: event}
	default:
		head = &Token{Kind: TokenNormal, Tag: tag, SSID: ssid, BID: bid, TID: tid, event: event}
		b.addChildren(head, ssid, nil)
		b.absorbCompoundParticle(head, ssid)
	}

	argument.headToken = head
	return head
}

// dispatchPredicateToken builds the predicate span from the clause head and
// (when distinct) the clause end, collecting children of both under the
// clause-boundary stopping rule and the argument sentinels.
func (b *builder) dispatchPredicateToken(event *Event, sentinels []*Token) {
	ssid := event.SSID
	tid := event.Head.ID
	head := &Token{Kind: TokenNormal, Tag: b.tag(ssid, tid), SSID: ssid, BID: b.bid(ssid, tid), TID: tid, event: event}
	b.addChildren(head, ssid, sentinels)
	if event.Head != event.End {
		endTID := event.End.ID
		endToken := &Token{Kind: TokenNormal, Tag: event.End, SSID: ssid, BID: b.bid(ssid, endTID), TID: endTID, event: event}
		b.addChildren(endToken, ssid, append(append([]*Token{}, sentinels...), head))
		b.absorbCompoundParticle(endToken, ssid)
		head.Parent = endToken
		endToken.Children = append(endToken.Children, head)
	}
	event.PAS.Predicate.headToken = head
}

// absorbCompoundParticle folds the immediately following tag into the span
// when it is a compound-case-particle continuation, except the complement
// "と" variant. Hand-tuned rule carried over from the reference corpus
// behavior.
func (b *builder) absorbCompoundParticle(token *Token, ssid int) {
	next := b.tag(ssid, token.TID+1)
	if next == nil || !next.Features.Has("複合辞") || next.Features.Has("補文ト") {
		return
	}
	tid := token.TID + 1
	parent := &Token{Kind: token.Kind, Tag: next, SSID: ssid, BID: b.bid(ssid, tid), TID: tid, event: token.event}
	b.addChildren(parent, ssid, []*Token{token})
	b.absorbCompoundParticle(parent, ssid)
	token.Parent = parent
	parent.Children = append(parent.Children, token)
}

// addChildren collects the syntactic children of a token's tag into its
// synthetic tree. The walk is an explicit worklist with an immutable stop
// set: clause heads, clause ends, and sentinel tags terminate a branch.
func (b *builder) addChildren(parent *Token, ssid int, sentinels []*Token) {
	stop := make(map[*knp.Tag]bool, len(sentinels))
	for _, s := range sentinels {
		if s.Tag != nil {
			stop[s.Tag] = true
		}
	}

	type item struct {
		tag   *knp.Tag
		under *Token
	}
	var work []item
	for _, child := range parent.Tag.Children {
		work = append(work, item{child, parent})
	}
	for len(work) > 0 {
		cur := work[0]
		work = work[1:]
		if stop[cur.tag] || cur.tag.Features.Has("節-主辞") || cur.tag.Features.Has("節-区切") {
			continue
		}
		token := &Token{
			Kind: TokenNormal, Tag: cur.tag, SSID: ssid,
			BID: b.bid(ssid, cur.tag.ID), TID: cur.tag.ID,
			IsChild: true, Parent: cur.under, event: parent.event,
		}
		cur.under.Children = append(cur.under.Children, token)
		for _, child := range cur.tag.Children {
			work = append(work, item{child, token})
		}
	}
}

// resolveDuplication removes, from every argument's child set, any token
// whose phrase is also some argument's head span. Runs as a single pass
// over all arguments after they are collected, keyed on position only (the
// case dimension is ignored) so that no phrase appears twice per event.
func resolveDuplication(heads []*Token) {
	headKeys := make(map[[3]int]bool, len(heads))
	for _, head := range heads {
		headKeys[head.positionKey()] = true
	}

	var prune func(children []*Token) []*Token
	prune = func(children []*Token) []*Token {
		kept := children[:0]
		for _, child := range children {
			if child.Omitted() {
				kept = append(kept, child)
				continue
			}
			if headKeys[child.positionKey()] {
				continue
			}
			child.Children = prune(child.Children)
			kept = append(kept, child)
		}
		return kept
	}

	for _, head := range heads {
		head.Children = prune(head.Children)
	}
}
