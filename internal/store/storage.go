// Package store implements the whole-tree persistence contract named as
// an external collaborator in spec.md §1/§8: save a discovered sitemap
// tree keyed by a run ID, reload it later, and list past runs. Grounded
// on internal/storage/storage.go's Store interface plus
// sqlite.go/postgres.go's driver-specific implementations, generalised
// from article/category rows to one JSON-blob-per-run.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/romangod6/sitemaptree/internal/entity"
)

// RunSummary is one row of ListRuns: enough to identify and pick a run
// without loading its full tree.
type RunSummary struct {
	RunID     uuid.UUID
	Homepage  string
	CreatedAt time.Time
}

// TreeStore persists and rehydrates discovered sitemap trees.
type TreeStore interface {
	Initialize(ctx context.Context) error
	Close() error

	SaveTree(ctx context.Context, runID uuid.UUID, homepage string, root *entity.Sitemap) error
	LoadTree(ctx context.Context, runID uuid.UUID) (*entity.Sitemap, error)
	ListRuns(ctx context.Context) ([]RunSummary, error)
}
