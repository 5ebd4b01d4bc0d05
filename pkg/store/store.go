// Package store persists completed layout runs so the API can serve them
// again without recomputing. Two implementations exist: MongoDB for
// deployments and an in-memory map for tests and single-process servers.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kineograph/kineograph/pkg/errors"
	"github.com/kineograph/kineograph/pkg/layout"
	"github.com/kineograph/kineograph/pkg/pipeline"
)

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New(errors.ErrCodeRunNotFound, "run not found")

// Run is one persisted pipeline execution.
type Run struct {
	ID        uuid.UUID        `json:"id" bson:"_id"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
	GraphHash string           `json:"graph_hash" bson:"graph_hash"`
	Options   pipeline.Options `json:"options" bson:"options"`
	Layout    *layout.Layout   `json:"layout" bson:"layout"`
}

// NewRun assembles a Run from a pipeline result with a fresh id.
func NewRun(opts pipeline.Options, result *pipeline.Result) Run {
	return Run{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		GraphHash: result.GraphHash,
		Options:   opts,
		Layout:    result.Layout,
	}
}

// Store persists and retrieves runs.
type Store interface {
	// Save persists a run. Saving an existing id overwrites it.
	Save(ctx context.Context, run Run) error

	// Get retrieves a run by id. Returns ErrRunNotFound if absent.
	Get(ctx context.Context, id uuid.UUID) (Run, error)

	// List returns the most recent runs, newest first, up to limit.
	List(ctx context.Context, limit int) ([]Run, error)

	// Delete removes a run. Returns ErrRunNotFound if absent.
	Delete(ctx context.Context, id uuid.UUID) error

	// Close releases any resources held by the store.
	Close(ctx context.Context) error
}

// DefaultListLimit caps List results when the caller passes limit <= 0.
const DefaultListLimit = 50
