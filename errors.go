package eventgraph

import "errors"

var (
	// ErrSchemaMismatch is returned when a serialized graph is missing a
	// required key or references an unknown event.
	ErrSchemaMismatch = errors.New("eventgraph: serialized graph does not match schema")

	// ErrSnapshotGraph is returned when an operation needs the live parser
	// analysis but the graph was loaded from a serialized snapshot.
	ErrSnapshotGraph = errors.New("eventgraph: graph was loaded from a snapshot")

	// ErrEmptyDocument is returned when a build is attempted over zero
	// sentences.
	ErrEmptyDocument = errors.New("eventgraph: document has no sentences")
)
