// Package store persists diagram runs.
//
// A Run records one pipeline execution: the input's content hash, graph
// shape, and the computed layout document. Two backends exist:
//   - file: JSON files under the config directory, for CLI usage
//   - mongo: a collection on MongoDB, for server deployments
//
// Both implement [Store]; callers pick per deployment. Run ids are UUIDs
// assigned on first save.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Run is one persisted pipeline execution.
type Run struct {
	ID        string    `json:"id" bson:"_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	// Source names the parser that produced the graph ("compose", "json").
	Source string `json:"source" bson:"source"`

	// GraphHash is the content hash of the parsed graph document.
	GraphHash string `json:"graph_hash" bson:"graph_hash"`

	NodeCount int `json:"node_count" bson:"node_count"`
	EdgeCount int `json:"edge_count" bson:"edge_count"`

	// Layout is the rendered layout document (pipeline JSON output).
	Layout json.RawMessage `json:"layout,omitempty" bson:"layout,omitempty"`
}

// NewRun creates a run with a fresh id and timestamp.
func NewRun(source, graphHash string, nodeCount, edgeCount int, layout json.RawMessage) *Run {
	return &Run{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Source:    source,
		GraphHash: graphHash,
		NodeCount: nodeCount,
		EdgeCount: edgeCount,
		Layout:    layout,
	}
}

// Store persists and retrieves runs.
type Store interface {
	// Save writes a run. An empty id is assigned before writing; saving
	// an existing id overwrites it.
	Save(ctx context.Context, run *Run) error

	// Get retrieves a run by id. A missing run returns an error with code
	// RUN_NOT_FOUND.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns runs ordered newest first, at most limit entries.
	// The listed runs omit the layout document to keep listings cheap.
	List(ctx context.Context, limit int) ([]*Run, error)

	// Delete removes a run. Deleting a missing run is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
