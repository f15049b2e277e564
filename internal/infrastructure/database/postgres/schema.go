package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"customer-service/internal/pkg/apperrors"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the persons and accounts tables when they are missing.
// It never alters existing tables.
func EnsureSchema(ctx context.Context, db DBPool, logger *slog.Logger) error {
	logger.InfoContext(ctx, "Ensuring database schema")
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		logger.ErrorContext(ctx, "Failed to apply database schema", slog.Any("error", err))
		return fmt.Errorf("%w: failed to apply schema: %w", apperrors.ErrDatabase, err)
	}
	return nil
}
