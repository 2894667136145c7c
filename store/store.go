// Package store persists event graphs in SQLite. Each document keeps its
// full snapshot for lossless reload plus flattened event and relation rows
// for SQL-side querying and full-text search.
package store

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kotonoha-nlp/eventgraph"
)

// Document represents a row in the documents table.
type Document struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	ContentHash   string `json:"content_hash"`
	SentenceCount int    `json:"sentence_count"`
	EventCount    int    `json:"event_count"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// EventRow is a flattened event as stored in the events table.
type EventRow struct {
	DocumentID      int64  `json:"document_id"`
	EventID         int    `json:"event_id"`
	SID             string `json:"sid"`
	SSID            int    `json:"ssid"`
	Surf            string `json:"surf"`
	NormalizedMrphs string `json:"normalized_mrphs"`
	NormalizedReps  string `json:"normalized_reps"`
	PredicateType   string `json:"predicate_type"`
}

// RelationRow is a flattened relation as stored in the relations table.
type RelationRow struct {
	DocumentID   int64  `json:"document_id"`
	ModifierEvid int    `json:"modifier_evid"`
	HeadEvid     int    `json:"head_evid"`
	HeadTid      int    `json:"head_tid"`
	Label        string `json:"label"`
	Surf         string `json:"surf"`
	Reliable     bool   `json:"reliable"`
}

// SearchResult is one full-text match over event surfaces.
type SearchResult struct {
	DocumentID   int64   `json:"document_id"`
	DocumentName string  `json:"document_name"`
	EventID      int     `json:"event_id"`
	Surf         string  `json:"surf"`
	Score        float64 `json:"score"`
}

// Store wraps the SQLite database for all event graph persistence.
type Store struct {
	db *sql.DB
}

// New opens (or creates) a SQLite database at the given path and
// initialises the schema including the FTS5 virtual table.
func New(dbPath string) (*Store, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	// Connection pool settings for SQLite.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}

	// Run pending migrations.
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// SaveGraph stores a graph under the given document name, replacing any
// previous version. The snapshot and the flattened rows are written in one
// transaction. Returns the document ID.
func (s *Store) SaveGraph(ctx context.Context, name string, g *eventgraph.EventGraph) (int64, error) {
	var buf bytes.Buffer
	if err := g.Save(&buf); err != nil {
		return 0, err
	}
	snapshot := buf.Bytes()
	sum := sha256.Sum256(snapshot)
	hash := hex.EncodeToString(sum[:])

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO documents (name, content_hash, sentence_count, event_count, snapshot)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			content_hash = excluded.content_hash,
			sentence_count = excluded.sentence_count,
			event_count = excluded.event_count,
			snapshot = excluded.snapshot,
			updated_at = CURRENT_TIMESTAMP
	`, name, hash, len(g.Sentences()), len(g.Events()), snapshot)
	if err != nil {
		return 0, fmt.Errorf("upserting document: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	// If UPSERT did an UPDATE, LastInsertId may not reflect the existing row.
	if id == 0 {
		row := tx.QueryRowContext(ctx, "SELECT id FROM documents WHERE name = ?", name)
		if err := row.Scan(&id); err != nil {
			return 0, err
		}
	}

	// Replace the flattened rows wholesale.
	if _, err := tx.ExecContext(ctx, "DELETE FROM events WHERE document_id = ?", id); err != nil {
		return 0, fmt.Errorf("clearing events: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM relations WHERE document_id = ?", id); err != nil {
		return 0, fmt.Errorf("clearing relations: %w", err)
	}

	for _, event := range g.Events() {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO events (document_id, event_id, sid, ssid, surf, normalized_mrphs, normalized_reps, predicate_type)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, id, event.ID, event.SID, event.SSID, event.Surf,
			event.NormalizedMrphs, event.NormalizedReps, event.PAS.Predicate.Type); err != nil {
			return 0, fmt.Errorf("inserting event %d: %w", event.ID, err)
		}
	}
	for _, relation := range g.Relations() {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO relations (document_id, modifier_evid, head_evid, head_tid, label, surf, reliable)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, id, relation.ModifierID, relation.HeadID, relation.HeadTagID,
			relation.Label, relation.Surface, relation.Reliable); err != nil {
			return 0, fmt.Errorf("inserting relation %d->%d: %w", relation.ModifierID, relation.HeadID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing save: %w", err)
	}
	return id, nil
}

// LoadGraph reloads a stored document's graph from its snapshot.
func (s *Store) LoadGraph(ctx context.Context, name string) (*eventgraph.EventGraph, error) {
	var snapshot []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT snapshot FROM documents WHERE name = ?", name).Scan(&snapshot)
	if err != nil {
		return nil, fmt.Errorf("loading document %q: %w", name, err)
	}
	return eventgraph.Load(bytes.NewReader(snapshot))
}

// GetDocument retrieves a document's metadata by name.
func (s *Store) GetDocument(ctx context.Context, name string) (*Document, error) {
	doc := &Document{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, content_hash, sentence_count, event_count, created_at, updated_at
		FROM documents WHERE name = ?
	`, name).Scan(&doc.ID, &doc.Name, &doc.ContentHash,
		&doc.SentenceCount, &doc.EventCount, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ListDocuments returns all stored documents, newest first.
func (s *Store) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, content_hash, sentence_count, event_count, created_at, updated_at
		FROM documents ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.ContentHash,
			&doc.SentenceCount, &doc.EventCount, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// DeleteDocument removes a document and, via cascade, its rows.
func (s *Store) DeleteDocument(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting document %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// RelationsByLabel returns a document's flattened relations with the given
// label.
func (s *Store) RelationsByLabel(ctx context.Context, documentID int64, label string) ([]RelationRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT document_id, modifier_evid, head_evid, head_tid, label, surf, reliable
		FROM relations WHERE document_id = ? AND label = ?
		ORDER BY modifier_evid
	`, documentID, label)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var relations []RelationRow
	for rows.Next() {
		var r RelationRow
		if err := rows.Scan(&r.DocumentID, &r.ModifierEvid, &r.HeadEvid,
			&r.HeadTid, &r.Label, &r.Surf, &r.Reliable); err != nil {
			return nil, err
		}
		relations = append(relations, r)
	}
	return relations, rows.Err()
}

// SearchEvents runs a full-text query over event surfaces across all
// documents.
func (s *Store) SearchEvents(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.document_id, d.name, e.event_id, e.surf, bm25(events_fts) AS score
		FROM events_fts
		JOIN events e ON e.id = events_fts.rowid
		JOIN documents d ON d.id = e.document_id
		WHERE events_fts MATCH ?
		ORDER BY score
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching events: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.DocumentID, &r.DocumentName, &r.EventID, &r.Surf, &r.Score); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
