//go:build cgo

package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kotonoha-nlp/eventgraph"
	"github.com/kotonoha-nlp/eventgraph/knp"
)

const documentText = `# S-ID:d1-s1
* 1D <文節内>
+ 1D <主辞代表表記:彼/かれ>
彼 かれ 彼 名詞 6 普通名詞 1 * 0 * 0 "代表表記:彼/かれ" <代表表記:彼/かれ><内容語>
は は は 助詞 9 副助詞 2 * 0 * 0 NIL <かな漢字>
* -1D <文末>
+ -1D <文末><節-主辞><節-区切><用言:動><時制-過去><用言代表表記:走る/はしる><述語項構造:走る/はしる:動1:ガ/C/彼/0/0/1>
走った はしった 走る 動詞 2 * 0 子音動詞ラ行 10 タ形 8 "代表表記:走る/はしる" <代表表記:走る/はしる><活用語><内容語><用言表記先頭><用言表記末尾>
。 。 。 特殊 1 句点 1 * 0 * 0 NIL <文末>
EOS
# S-ID:d1-s2
* 1P <係:連格>
+ 1P <節-主辞><節-区切:連体修飾><用言:動><用言代表表記:走る/はしる><述語項構造:走る/はしる:動1:ガ/C/人/0/1/1>
走る はしる 走る 動詞 2 * 0 子音動詞ラ行 10 基本形 2 "代表表記:走る/はしる" <代表表記:走る/はしる><活用語><内容語><用言表記先頭><用言表記末尾>
* 2D <係:ガ格>
+ 2D <主辞代表表記:人/ひと>
人 ひと 人 名詞 6 普通名詞 1 * 0 * 0 "代表表記:人/ひと" <代表表記:人/ひと><内容語>
が が が 助詞 9 格助詞 1 * 0 * 0 NIL <かな漢字>
* -1D <文末>
+ -1D <文末><節-主辞><節-区切><用言:動><時制-過去><用言代表表記:転ぶ/ころぶ><述語項構造:転ぶ/ころぶ:動1:ガ/C/人/0/1/1>
転んだ ころんだ 転ぶ 動詞 2 * 0 子音動詞バ行 10 タ形 8 "代表表記:転ぶ/ころぶ" <代表表記:転ぶ/ころぶ><活用語><内容語><用言表記先頭><用言表記末尾>
。 。 。 特殊 1 句点 1 * 0 * 0 NIL <文末>
EOS
`

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testGraph(t *testing.T) *eventgraph.EventGraph {
	t.Helper()
	analyses, err := knp.ReadAll(strings.NewReader(documentText))
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	g, err := eventgraph.Build(analyses)
	if err != nil {
		t.Fatalf("building graph: %v", err)
	}
	return g
}

func TestSaveAndLoadGraph(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	g := testGraph(t)

	id, err := s.SaveGraph(ctx, "doc1", g)
	if err != nil {
		t.Fatalf("SaveGraph() error: %v", err)
	}
	if id == 0 {
		t.Fatal("SaveGraph() returned zero id")
	}

	loaded, err := s.LoadGraph(ctx, "doc1")
	if err != nil {
		t.Fatalf("LoadGraph() error: %v", err)
	}
	if !loaded.FromSnapshot() {
		t.Error("loaded graph should be marked as snapshot-backed")
	}
	if got, want := len(loaded.Events()), len(g.Events()); got != want {
		t.Errorf("loaded %d events, want %d", got, want)
	}
	if got, want := loaded.Events()[0].Surf, g.Events()[0].Surf; got != want {
		t.Errorf("event surf = %q, want %q", got, want)
	}
}

func TestSaveGraphUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	g := testGraph(t)

	id1, err := s.SaveGraph(ctx, "doc1", g)
	if err != nil {
		t.Fatalf("first SaveGraph() error: %v", err)
	}
	id2, err := s.SaveGraph(ctx, "doc1", g)
	if err != nil {
		t.Fatalf("second SaveGraph() error: %v", err)
	}
	if id1 != id2 {
		t.Errorf("upsert changed document id: %d != %d", id1, id2)
	}

	docs, err := s.ListDocuments(ctx)
	if err != nil {
		t.Fatalf("ListDocuments() error: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d documents, want 1", len(docs))
	}

	var n int
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM events WHERE document_id = ?", id1).Scan(&n); err != nil {
		t.Fatalf("counting events: %v", err)
	}
	if n != len(g.Events()) {
		t.Errorf("got %d event rows after upsert, want %d", n, len(g.Events()))
	}
}

func TestGetDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	g := testGraph(t)

	if _, err := s.SaveGraph(ctx, "doc1", g); err != nil {
		t.Fatalf("SaveGraph() error: %v", err)
	}

	doc, err := s.GetDocument(ctx, "doc1")
	if err != nil {
		t.Fatalf("GetDocument() error: %v", err)
	}
	if doc.Name != "doc1" {
		t.Errorf("name = %q, want doc1", doc.Name)
	}
	if doc.SentenceCount != 2 {
		t.Errorf("sentence count = %d, want 2", doc.SentenceCount)
	}
	if doc.EventCount != len(g.Events()) {
		t.Errorf("event count = %d, want %d", doc.EventCount, len(g.Events()))
	}
	if doc.ContentHash == "" {
		t.Error("content hash is empty")
	}

	if _, err := s.GetDocument(ctx, "absent"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetDocument(absent) error = %v, want sql.ErrNoRows", err)
	}
}

func TestDeleteDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.SaveGraph(ctx, "doc1", testGraph(t))
	if err != nil {
		t.Fatalf("SaveGraph() error: %v", err)
	}
	if err := s.DeleteDocument(ctx, "doc1"); err != nil {
		t.Fatalf("DeleteDocument() error: %v", err)
	}
	if err := s.DeleteDocument(ctx, "doc1"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("second delete error = %v, want sql.ErrNoRows", err)
	}

	// Cascade removed the flattened rows.
	var n int
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM events WHERE document_id = ?", id).Scan(&n); err != nil {
		t.Fatalf("counting events: %v", err)
	}
	if n != 0 {
		t.Errorf("got %d orphaned event rows, want 0", n)
	}
}

func TestRelationsByLabel(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.SaveGraph(ctx, "doc1", testGraph(t))
	if err != nil {
		t.Fatalf("SaveGraph() error: %v", err)
	}

	relations, err := s.RelationsByLabel(ctx, id, "連体修飾")
	if err != nil {
		t.Fatalf("RelationsByLabel() error: %v", err)
	}
	if len(relations) != 1 {
		t.Fatalf("got %d adnominal relations, want 1", len(relations))
	}
	if !relations[0].Reliable {
		t.Error("adnominal relation should be reliable")
	}

	relations, err = s.RelationsByLabel(ctx, id, "並列")
	if err != nil {
		t.Fatalf("RelationsByLabel() error: %v", err)
	}
	if len(relations) != 0 {
		t.Errorf("got %d parallel relations, want 0", len(relations))
	}
}

func TestSearchEvents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.SaveGraph(ctx, "doc1", testGraph(t)); err != nil {
		t.Fatalf("SaveGraph() error: %v", err)
	}

	results, err := s.SearchEvents(ctx, "彼は走った", 10)
	if err != nil {
		t.Fatalf("SearchEvents() error: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("no search results")
	}
	if results[0].DocumentName != "doc1" {
		t.Errorf("document name = %q, want doc1", results[0].DocumentName)
	}
	if !strings.Contains(results[0].Surf, "走った") {
		t.Errorf("top result %q does not contain the query term", results[0].Surf)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// New already migrated; a second run must be a no-op.
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}

	var version int
	if err := s.DB().QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version); err != nil {
		t.Fatalf("reading schema version: %v", err)
	}
	if version < 1 {
		t.Errorf("schema version = %d, want >= 1", version)
	}
}
