package postgres

import (
	"context"
	"customer-service/internal/domain/customer"
	"customer-service/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5"
)

type txKey struct{}

// TxManager opens one pgx transaction per WithinTx call and hands it to the
// stores through the context.
type TxManager struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.Transactor = (*TxManager)(nil)

func NewTxManager(db DBPool, logger *slog.Logger) *TxManager {
	if db == nil {
		panic("DBPool cannot be nil for TxManager")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewTxManager, using default stderr handler")
	}
	return &TxManager{
		db:     db,
		logger: logger.With("component", "TxManager"),
	}
}

// WithinTx commits when fn returns nil and rolls back otherwise. Calls nested in
// an existing transaction join it.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	m.logger.DebugContext(ctx, "Beginning transaction")
	tx, err := m.db.Begin(ctx)
	if err != nil {
		m.logger.ErrorContext(ctx, "Failed to begin transaction", slog.Any("error", err))
		return fmt.Errorf("%w: failed to begin transaction: %w", apperrors.ErrDatabase, err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		m.rollback(ctx, tx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		m.logger.ErrorContext(ctx, "Failed to commit transaction", slog.Any("error", err))
		return fmt.Errorf("%w: failed to commit transaction: %w", apperrors.ErrDatabase, err)
	}
	m.logger.DebugContext(ctx, "Transaction committed successfully")
	return nil
}

func (m *TxManager) rollback(ctx context.Context, tx pgx.Tx) {
	err := tx.Rollback(context.WithoutCancel(ctx))
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		m.logger.ErrorContext(ctx, "Failed to rollback transaction", slog.Any("error", err))
		return
	}
	m.logger.InfoContext(ctx, "Transaction rolled back")
}

// conn returns the transaction carried by ctx, or the pool.
func conn(ctx context.Context, db DBPool) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return db
}
