package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/panetree/internal/domain/entity"
	"github.com/bnema/panetree/internal/domain/repository"
	"github.com/bnema/panetree/internal/logging"
)

type layoutSnapshotRepo struct {
	db *sql.DB
}

// NewLayoutSnapshotRepository creates a new layout snapshot repository.
func NewLayoutSnapshotRepository(db *sql.DB) repository.LayoutSnapshotRepository {
	return &layoutSnapshotRepo{db: db}
}

// Save stores or replaces the snapshot under the given name.
func (r *layoutSnapshotRepo) Save(ctx context.Context, name string, snapshot *entity.TreeSnapshot) error {
	log := logging.FromContext(ctx)
	if name == "" {
		return errors.New("snapshot name cannot be empty")
	}
	if snapshot == nil {
		return errors.New("snapshot cannot be nil")
	}

	savedAt := snapshot.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}

	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal layout snapshot")
		return err
	}

	log.Debug().
		Str("name", name).
		Int("node_count", snapshot.CountNodes()).
		Int("leaf_count", snapshot.CountLeaves()).
		Msg("saving layout snapshot")

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			log.Debug().Err(rollbackErr).Msg("snapshot rollback reported non-terminal error")
		}
	}()

	const upsert = `
		INSERT INTO layout_snapshots (name, snapshot_json, version, node_count, leaf_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			snapshot_json = excluded.snapshot_json,
			version = excluded.version,
			node_count = excluded.node_count,
			leaf_count = excluded.leaf_count,
			updated_at = excluded.updated_at`

	if _, err := tx.ExecContext(ctx, upsert,
		name,
		string(snapshotJSON),
		snapshot.Version,
		snapshot.CountNodes(),
		snapshot.CountLeaves(),
		savedAt,
		savedAt,
	); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot transaction: %w", err)
	}

	return nil
}

// Get returns the snapshot saved under name, or nil when none exists.
func (r *layoutSnapshotRepo) Get(ctx context.Context, name string) (*entity.TreeSnapshot, error) {
	const query = `SELECT snapshot_json FROM layout_snapshots WHERE name = ?`

	var snapshotJSON string
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&snapshotJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var snapshot entity.TreeSnapshot
	if err := json.Unmarshal([]byte(snapshotJSON), &snapshot); err != nil {
		logging.FromContext(ctx).Error().Err(err).
			Str("name", name).
			Msg("failed to unmarshal layout snapshot")
		return nil, err
	}

	return &snapshot, nil
}

// List returns summary rows for all saved layouts, newest first.
func (r *layoutSnapshotRepo) List(ctx context.Context) ([]*entity.SavedLayout, error) {
	const query = `
		SELECT name, version, node_count, leaf_count, created_at, updated_at
		FROM layout_snapshots
		ORDER BY updated_at DESC, name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var layouts []*entity.SavedLayout
	for rows.Next() {
		layout := &entity.SavedLayout{}
		if err := rows.Scan(
			&layout.Name,
			&layout.Version,
			&layout.NodeCount,
			&layout.LeafCount,
			&layout.CreatedAt,
			&layout.UpdatedAt,
		); err != nil {
			return nil, err
		}
		layouts = append(layouts, layout)
	}

	return layouts, rows.Err()
}

// Delete removes the snapshot saved under name.
func (r *layoutSnapshotRepo) Delete(ctx context.Context, name string) error {
	log := logging.FromContext(ctx)
	log.Debug().Str("name", name).Msg("deleting layout snapshot")

	result, err := r.db.ExecContext(ctx, `DELETE FROM layout_snapshots WHERE name = ?`, name)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("snapshot %q: %w", name, sql.ErrNoRows)
	}

	return nil
}

// Prune keeps the most recently updated snapshots and deletes the rest.
func (r *layoutSnapshotRepo) Prune(ctx context.Context, keep int) (int, error) {
	log := logging.FromContext(ctx)
	if keep < 0 {
		return 0, fmt.Errorf("keep must be non-negative, got %d", keep)
	}

	const query = `
		DELETE FROM layout_snapshots
		WHERE name NOT IN (
			SELECT name FROM layout_snapshots
			ORDER BY updated_at DESC, name ASC
			LIMIT ?
		)`

	result, err := r.db.ExecContext(ctx, query, keep)
	if err != nil {
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	if affected > 0 {
		log.Info().Int64("removed", affected).Int("kept", keep).Msg("pruned layout snapshots")
	}

	return int(affected), nil
}
