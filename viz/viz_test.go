package viz

import (
	"strings"
	"testing"

	"github.com/emicklei/dot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotonoha-nlp/eventgraph"
	"github.com/kotonoha-nlp/eventgraph/knp"
)

const fixtureText = `# S-ID:d2-s1
* 1P <係:連格>
+ 1P <節-主辞><節-区切:連体修飾><用言:動><時制-未完了><用言代表表記:走る/はしる><述語項構造:走る/はしる:動1:ガ/C/人/0/1/1>
走る はしる 走る 動詞 2 * 0 子音動詞ラ行 10 基本形 2 "代表表記:走る/はしる" <代表表記:走る/はしる><活用語><内容語><用言表記先頭><用言表記末尾>
* 2D <係:ガ格>
+ 2D <主辞代表表記:人/ひと>
人 ひと 人 名詞 6 普通名詞 1 * 0 * 0 "代表表記:人/ひと" <代表表記:人/ひと><内容語>
が が が 助詞 9 格助詞 1 * 0 * 0 NIL <かな漢字>
* -1D <文末>
+ -1D <文末><節-主辞><節-区切><用言:動><時制-過去><用言代表表記:転ぶ/ころぶ><標準用言代表表記:転ぶ/ころぶ><述語項構造:転ぶ/ころぶ:動1:ガ/C/人/0/1/1>
転んだ ころんだ 転ぶ 動詞 2 * 0 子音動詞バ行 10 タ形 8 "代表表記:転ぶ/ころぶ" <代表表記:転ぶ/ころぶ><活用語><内容語><用言表記先頭><用言表記末尾>
。 。 。 特殊 1 句点 1 * 0 * 0 NIL <文末>
EOS
`

func fixtureGraph(t *testing.T) *eventgraph.EventGraph {
	t.Helper()
	analyses, err := knp.ReadAll(strings.NewReader(fixtureText))
	require.NoError(t, err)
	g, err := eventgraph.Build(analyses)
	require.NoError(t, err)
	return g
}

func TestRender(t *testing.T) {
	g := fixtureGraph(t)
	out := Render(g, Options{}).String()

	assert.Contains(t, out, "node_0")
	assert.Contains(t, out, "node_1")
	assert.Contains(t, out, "[surf]")
	assert.Contains(t, out, "[pas]")
	assert.Contains(t, out, "走る/はしる:動")
	assert.Contains(t, out, "▼", "adnominal edges carry the mark")
	assert.Contains(t, out, "人が転んだ")
	assert.Contains(t, out, `\l`, "labels are left-justified")
}

func TestRenderOptions(t *testing.T) {
	g := fixtureGraph(t)

	out := Render(g, Options{ExcludeDetail: true}).String()
	assert.Contains(t, out, "[surf]")
	assert.NotContains(t, out, "[pas]")
	assert.NotContains(t, out, "[feature]")

	withText := Render(g, Options{}).String()
	withoutText := Render(g, Options{ExcludeOriginalText: true}).String()
	assert.Contains(t, withText, "head_0")
	assert.NotContains(t, withoutText, "head_0")
}

func TestWrite(t *testing.T) {
	g := fixtureGraph(t)
	var buf strings.Builder
	require.NoError(t, Write(&buf, g, Options{}))
	assert.True(t, strings.HasPrefix(buf.String(), "digraph"))
}

func TestDocumentID(t *testing.T) {
	assert.Equal(t, "d2", documentID("d2-s1"))
	assert.Equal(t, "w201106-0000060050", documentID("w201106-0000060050-1"))
	assert.Equal(t, "nodash", documentID("nodash"))
}

func TestEdgeLabel(t *testing.T) {
	assert.Equal(t, "   ▼   ", edgeLabel(&eventgraph.Relation{Label: "連体修飾"}))
	assert.Equal(t, "      ", edgeLabel(&eventgraph.Relation{Label: "係り受け"}))
	assert.Equal(t, "   談:対比   ", edgeLabel(&eventgraph.Relation{Label: "談話関係:対比"}))
	assert.Equal(t, "   条件:ば   ", edgeLabel(&eventgraph.Relation{Label: "条件", Surface: "ば"}))
}

func TestLeftJustified(t *testing.T) {
	got := leftJustified([]string{`a "quoted" line`, "second"})
	assert.Equal(t, dot.Literal(`"a \"quoted\" line\l\nsecond\l"`), got)
}

func TestNodeWidth(t *testing.T) {
	assert.InDelta(t, 0.4, nodeWidth([]string{"彼は"}), 1e-9, "full-width runes count double")
	assert.InDelta(t, 0.4, nodeWidth([]string{"ab", "abcd"}), 1e-9, "widest line wins")
}
