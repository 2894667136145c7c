package eventgraph

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	text := singleClauseText + adnominalText + discourseText + anaphoraText
	g := buildFromText(t, text)

	var first bytes.Buffer
	require.NoError(t, g.Save(&first))

	loaded, err := Load(bytes.NewReader(first.Bytes()))
	require.NoError(t, err)
	assert.True(t, loaded.FromSnapshot())

	var second bytes.Buffer
	require.NoError(t, loaded.Save(&second))
	assert.Equal(t, first.String(), second.String(),
		"a reloaded snapshot must serialize identically")

	require.Len(t, loaded.Events(), len(g.Events()))
	for i, event := range g.Events() {
		got := loaded.Events()[i]
		assert.Equal(t, event.ID, got.ID)
		assert.Equal(t, event.Surf, got.Surf)
		assert.Equal(t, event.NormalizedMrphs, got.NormalizedMrphs)
		assert.Equal(t, event.PAS.Predicate.StandardReps, got.PAS.Predicate.StandardReps)
		assert.Equal(t, event.Features.Tense, got.Features.Tense)
	}
	require.Len(t, loaded.Relations(), len(g.Relations()))
	for i, relation := range g.Relations() {
		got := loaded.Relations()[i]
		assert.Equal(t, relation.ModifierID, got.ModifierID)
		assert.Equal(t, relation.HeadID, got.HeadID)
		assert.Equal(t, relation.Label, got.Label)
		assert.Equal(t, relation.Reliable, got.Reliable)
		assert.Equal(t, relation.HeadTagID, got.HeadTagID)
	}
}

func TestSaveLoadFile(t *testing.T) {
	g := buildFromText(t, singleClauseText)
	path := filepath.Join(t.TempDir(), "graph.json")

	require.NoError(t, g.SaveFile(path))
	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, loaded.Events(), 1)
	assert.Equal(t, "彼は走った。", loaded.Events()[0].Surf)
}

func TestLoadMissingKeyFails(t *testing.T) {
	g := buildFromText(t, singleClauseText)
	var buf bytes.Buffer
	require.NoError(t, g.Save(&buf))

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	var events []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(doc["events"], &events))
	delete(events[0], "pas")
	raw, err := json.Marshal(events)
	require.NoError(t, err)
	doc["events"] = raw
	mangled, err := json.Marshal(doc)
	require.NoError(t, err)

	_, err = Load(bytes.NewReader(mangled))
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestLoadNullKeyFails(t *testing.T) {
	g := buildFromText(t, singleClauseText)
	var buf bytes.Buffer
	require.NoError(t, g.Save(&buf))

	mangle := func(t *testing.T, rewrite func(event map[string]json.RawMessage)) []byte {
		t.Helper()
		var doc map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
		var events []map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(doc["events"], &events))
		rewrite(events[0])
		raw, err := json.Marshal(events)
		require.NoError(t, err)
		doc["events"] = raw
		mangled, err := json.Marshal(doc)
		require.NoError(t, err)
		return mangled
	}

	tests := []struct {
		name    string
		rewrite func(event map[string]json.RawMessage)
	}{
		{"null pas", func(event map[string]json.RawMessage) {
			event["pas"] = json.RawMessage("null")
		}},
		{"null features", func(event map[string]json.RawMessage) {
			event["features"] = json.RawMessage("null")
		}},
		{"pas without predicate", func(event map[string]json.RawMessage) {
			event["pas"] = json.RawMessage(`{"argument":{}}`)
		}},
		{"pas with null argument", func(event map[string]json.RawMessage) {
			event["pas"] = json.RawMessage(`{"predicate":{},"argument":null}`)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(bytes.NewReader(mangle(t, tt.rewrite)))
			assert.ErrorIs(t, err, ErrSchemaMismatch)
		})
	}
}

func TestLoadUnknownRelationTargetFails(t *testing.T) {
	g := buildFromText(t, adnominalText)
	var buf bytes.Buffer
	require.NoError(t, g.Save(&buf))

	mangled := bytes.Replace(buf.Bytes(), []byte(`"event_id": 1,`), []byte(`"event_id": 9,`), 1)
	_, err := Load(bytes.NewReader(mangled))
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestSnapshotGraphHasNoAnalyses(t *testing.T) {
	g := buildFromText(t, singleClauseText)
	analyses, err := g.Analyses()
	require.NoError(t, err)
	assert.Len(t, analyses, 1)

	var buf bytes.Buffer
	require.NoError(t, g.Save(&buf))
	loaded, err := Load(&buf)
	require.NoError(t, err)

	_, err = loaded.Analyses()
	assert.ErrorIs(t, err, ErrSnapshotGraph)
}
