package store

// schemaSQL is the DDL for all tables. The full graph snapshot is kept as
// JSON next to the flattened event and relation rows, so a document can be
// reloaded at full fidelity while the rows stay queryable.
const schemaSQL = `
-- Document registry with hash-based change detection
CREATE TABLE IF NOT EXISTS documents (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    content_hash TEXT NOT NULL,
    sentence_count INTEGER NOT NULL,
    event_count INTEGER NOT NULL,
    snapshot JSON NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Flattened events, one row per event of a document
CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY,
    document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
    event_id INTEGER NOT NULL,
    sid TEXT NOT NULL,
    ssid INTEGER NOT NULL,
    surf TEXT NOT NULL,
    normalized_mrphs TEXT NOT NULL,
    normalized_reps TEXT NOT NULL,
    predicate_type TEXT,
    UNIQUE (document_id, event_id)
);

-- Flattened relations, one row per edge of a document
CREATE TABLE IF NOT EXISTS relations (
    id INTEGER PRIMARY KEY,
    document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
    modifier_evid INTEGER NOT NULL,
    head_evid INTEGER NOT NULL,
    head_tid INTEGER NOT NULL,
    label TEXT NOT NULL,
    surf TEXT,
    reliable INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_events_document ON events(document_id);
CREATE INDEX IF NOT EXISTS idx_relations_document ON relations(document_id);
CREATE INDEX IF NOT EXISTS idx_relations_label ON relations(label);

-- Full-text search over event surfaces via FTS5
CREATE VIRTUAL TABLE IF NOT EXISTS events_fts USING fts5(
    surf,
    normalized_mrphs,
    content='events',
    content_rowid='id',
    tokenize='unicode61'
);

-- FTS triggers to keep index in sync
CREATE TRIGGER IF NOT EXISTS events_ai AFTER INSERT ON events BEGIN
    INSERT INTO events_fts(rowid, surf, normalized_mrphs) VALUES (new.id, new.surf, new.normalized_mrphs);
END;
CREATE TRIGGER IF NOT EXISTS events_ad AFTER DELETE ON events BEGIN
    INSERT INTO events_fts(events_fts, rowid, surf, normalized_mrphs) VALUES ('delete', old.id, old.surf, old.normalized_mrphs);
END;
`
