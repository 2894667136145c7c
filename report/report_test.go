package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

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

func TestWorkbook(t *testing.T) {
	g := fixtureGraph(t)
	f, err := Workbook(g)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Sentences", "Events", "Relations"}, f.GetSheetList())

	sentences, err := f.GetRows("Sentences")
	require.NoError(t, err)
	require.Len(t, sentences, 2, "header plus one sentence")
	assert.Equal(t, "sid", sentences[0][0])
	assert.Equal(t, "d2-s1", sentences[1][0])
	assert.Equal(t, "走る人が転んだ。", sentences[1][2])

	events, err := f.GetRows("Events")
	require.NoError(t, err)
	require.Len(t, events, 3, "header plus two events")
	assert.Equal(t, "event_id", events[0][0])
	assert.Equal(t, "走る", events[1][3])
	assert.Contains(t, events[2][9], "人:ガ", "argument summary lists case fillers")

	relations, err := f.GetRows("Relations")
	require.NoError(t, err)
	require.Len(t, relations, 2, "header plus one relation")
	assert.Equal(t, "連体修飾", relations[1][2])
}

func TestWriteFile(t *testing.T) {
	g := fixtureGraph(t)
	path := filepath.Join(t.TempDir(), "graph.xlsx")
	require.NoError(t, Write(path, g))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
