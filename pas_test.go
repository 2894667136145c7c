package eventgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kotonoha-nlp/eventgraph/knp"
)

func mrph(surface, lemma, pos, features string) *knp.Morpheme {
	return &knp.Morpheme{
		Surface:  surface,
		Lemma:    lemma,
		POS:      pos,
		Features: knp.ParseFeatures(features),
	}
}

func surfaces(morphemes []*knp.Morpheme) []string {
	out := make([]string, 0, len(morphemes))
	for _, m := range morphemes {
		out = append(out, m.Surface)
	}
	return out
}

func TestTruncatePredicateMorphemes(t *testing.T) {
	tests := []struct {
		name      string
		morphemes []*knp.Morpheme
		want      []string
	}{
		{
			name: "conjugating word drops trailing punctuation",
			morphemes: []*knp.Morpheme{
				mrph("走った", "走る", "動詞", "<活用語>"),
				mrph("。", "。", "特殊", ""),
			},
			want: []string{"走った"},
		},
		{
			name: "polite adjective drops です",
			morphemes: []*knp.Morpheme{
				mrph("美しい", "美しい", "形容詞", "<活用語>"),
				mrph("です", "です", "助動詞", "<活用語>"),
			},
			want: []string{"美しい"},
		},
		{
			name: "colloquial copula じゃ after conjugating word",
			morphemes: []*knp.Morpheme{
				mrph("使えない", "使える", "動詞", "<活用語>"),
				mrph("じゃ", "だ", "判定詞", ""),
				mrph("ん", "ん", "名詞", ""),
			},
			want: []string{"使えない"},
		},
		{
			name: "のだ does not count as the split point",
			morphemes: []*knp.Morpheme{
				mrph("走る", "走る", "動詞", "<活用語>"),
				mrph("のだ", "のだ", "助動詞", "<活用語>"),
			},
			want: []string{"走る"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncatePredicateMorphemes(tt.morphemes)
			assert.Equal(t, tt.want, surfaces(got))
			assert.Equal(t, tt.want, surfaces(truncatePredicateMorphemes(got)),
				"truncation must be idempotent")
		})
	}
}

func TestTruncateArgumentMorphemes(t *testing.T) {
	morphemes := []*knp.Morpheme{
		mrph("お", "お", "接頭辞", ""),
		mrph("弁当", "弁当", "名詞", ""),
		mrph("は", "は", "助詞", ""),
		mrph("、", "、", "特殊", ""),
	}
	got := truncateArgumentMorphemes(morphemes)
	assert.Equal(t, []string{"お", "弁当"}, surfaces(got))
	assert.Equal(t, []string{"お", "弁当"}, surfaces(truncateArgumentMorphemes(got)),
		"truncation must be idempotent")

	// A leading particle before any content word survives.
	leading := []*knp.Morpheme{
		mrph("と", "と", "助詞", ""),
		mrph("思う", "思う", "動詞", "<活用語>"),
	}
	assert.Equal(t, []string{"と", "思う"}, surfaces(truncateArgumentMorphemes(leading)))
}

func TestNormalizePredicatePhrase(t *testing.T) {
	morphemes := []*knp.Morpheme{
		mrph("走った", "走る", "動詞", "<活用語>"),
		mrph("。", "。", "特殊", ""),
	}

	content, adjunct, normalized := normalizePredicatePhrase(morphemes, modeMrphs, true)
	assert.True(t, normalized)
	assert.Equal(t, []string{"走る"}, content)
	assert.Equal(t, []string{"。"}, adjunct)

	content, adjunct, normalized = normalizePredicatePhrase(morphemes, modeMrphs, false)
	assert.True(t, normalized)
	assert.Equal(t, []string{"走った"}, content, "without truncation the surface form is kept")
	assert.Equal(t, []string{"。"}, adjunct)
}

func TestFormatSurfacesKeepsNuNegation(t *testing.T) {
	morphemes := []*knp.Morpheme{
		mrph("でき", "できる", "動詞", "<活用語>"),
		mrph("ませ", "ます", "助動詞", "<活用語>"),
		mrph("ん", "ぬ", "助動詞", "<活用語>"),
	}
	assert.Equal(t, "でき ませ ん", formatSurfaces(morphemes, true),
		"ぬ-negation keeps its surface form under normalization")
}

func TestCaseRankOrdering(t *testing.T) {
	assert.Less(t, caseRank("ガ２"), caseRank("ガ"))
	assert.Less(t, caseRank("ガ"), caseRank("ヲ"))
	assert.Less(t, caseRank("ヲ"), caseRank("ニ"))
	assert.Less(t, caseRank("ニ"), caseRank("デ"))
	assert.Equal(t, caseRank("デ"), caseRank("外の関係"))
}

func TestKatakanaToHiragana(t *testing.T) {
	assert.Equal(t, "が", katakanaToHiragana("ガ"))
	assert.Equal(t, "を", katakanaToHiragana("ヲ"))
	assert.Equal(t, "が２", katakanaToHiragana("ガ２"))
	assert.Equal(t, "外の関係", katakanaToHiragana("外ノ関係"))
}
