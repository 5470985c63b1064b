package repository

import (
	"context"

	"github.com/bnema/panetree/internal/domain/entity"
)

// LayoutSnapshotRepository persists named layout snapshots.
type LayoutSnapshotRepository interface {
	// Save stores or replaces the snapshot under the given name.
	Save(ctx context.Context, name string, snapshot *entity.TreeSnapshot) error

	// Get returns the snapshot saved under name, or nil when none exists.
	Get(ctx context.Context, name string) (*entity.TreeSnapshot, error)

	// List returns summary rows for all saved layouts, newest first.
	List(ctx context.Context) ([]*entity.SavedLayout, error)

	// Delete removes the snapshot saved under name.
	Delete(ctx context.Context, name string) error

	// Prune keeps the most recently updated snapshots and deletes the rest.
	// Returns how many rows were removed.
	Prune(ctx context.Context, keep int) (int, error)
}
