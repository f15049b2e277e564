package postgres

import (
	"context"
	"customer-service/internal/pkg/apperrors"
	"fmt"
	"log/slog"
	"os"
	"time"
)

const selectOrphanedIdentitiesSQL = `
        SELECT p.id
        FROM persons p
        LEFT JOIN accounts a ON a.id = p.id
        WHERE a.id IS NULL
        ORDER BY p.id ASC`

// IntegrityRepository reads cross-table state that neither store can see alone.
type IntegrityRepository struct {
	db     DBPool
	logger *slog.Logger
}

func NewIntegrityRepository(db DBPool, logger *slog.Logger) *IntegrityRepository {
	if db == nil {
		panic("DBPool cannot be nil for IntegrityRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	return &IntegrityRepository{
		db:     db,
		logger: logger.With("component", "IntegrityRepository"),
	}
}

// FindOrphanedIdentities returns the ids of persons rows that have no accounts
// row, the state left behind by an interrupted non-transactional create or delete.
func (r *IntegrityRepository) FindOrphanedIdentities(ctx context.Context) ([]int64, error) {
	start := time.Now()
	rows, err := r.db.Query(ctx, selectOrphanedIdentitiesSQL)
	if err != nil {
		observe("select_orphaned_identities", start, err)
		r.logger.ErrorContext(ctx, "Failed to query orphaned identities", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query orphaned identities: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			observe("select_orphaned_identities", start, err)
			r.logger.ErrorContext(ctx, "Failed to scan orphaned identity id", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan orphaned identity id: %w", apperrors.ErrDatabase, err)
		}
		ids = append(ids, id)
	}

	err = rows.Err()
	observe("select_orphaned_identities", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error iterating orphaned identity rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating orphaned identity rows: %w", apperrors.ErrDatabase, err)
	}
	return ids, nil
}
