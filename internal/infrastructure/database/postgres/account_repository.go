package postgres

import (
	"context"
	"customer-service/internal/domain/customer"
	"customer-service/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
)

const (
	insertAccountSQL = `
        INSERT INTO accounts (id, credential, active, created_at, updated_at)
        VALUES ($1, $2, $3, NOW(), NOW())
        RETURNING created_at, updated_at`

	updateAccountSQL = `
        UPDATE accounts
        SET credential = $1,
            active = $2,
            updated_at = NOW()
        WHERE id = $3
        RETURNING created_at, updated_at`

	selectAccountByIDSQL = `
        SELECT id, credential, active, created_at, updated_at
        FROM accounts
        WHERE id = $1`

	selectAllAccountsSQL = `
        SELECT id, credential, active, created_at, updated_at
        FROM accounts
        ORDER BY id ASC`

	deleteAccountSQL = `DELETE FROM accounts WHERE id = $1`
)

// AccountRepository stores account records in the accounts table. The id is
// always supplied by the caller and must reference an existing persons row.
type AccountRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.AccountStore = (*AccountRepository)(nil)

func NewAccountRepository(db DBPool, logger *slog.Logger) *AccountRepository {
	if db == nil {
		panic("DBPool cannot be nil for AccountRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewAccountRepository, using default stderr handler")
	}
	return &AccountRepository{
		db:     db,
		logger: logger.With("component", "AccountRepository"),
	}
}

func (r *AccountRepository) Save(ctx context.Context, account *customer.Account) error {
	if account == nil {
		return fmt.Errorf("%w: account cannot be nil", apperrors.ErrInvalidArgument)
	}
	if account.ID <= 0 {
		return fmt.Errorf("%w: account id must be the owning identity id", apperrors.ErrInvalidArgument)
	}

	logger := r.logger.With(slog.Int64("customerID", account.ID))
	logger.InfoContext(ctx, "Attempting to insert new account")

	start := time.Now()
	err := conn(ctx, r.db).QueryRow(ctx, insertAccountSQL,
		account.ID,
		account.Credential,
		account.Active,
	).Scan(
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	observe("insert_account", start, err)

	if err != nil {
		logger.ErrorContext(ctx, "Failed to insert account", slog.Any("error", err))
		return translateDBError(err, logger)
	}

	logger.InfoContext(ctx, "Account inserted successfully")
	return nil
}

// Update rewrites credential and status only.
func (r *AccountRepository) Update(ctx context.Context, account *customer.Account) error {
	if account == nil {
		return fmt.Errorf("%w: account cannot be nil", apperrors.ErrInvalidArgument)
	}

	logger := r.logger.With(slog.Int64("customerID", account.ID))
	logger.InfoContext(ctx, "Attempting to update account", slog.Bool("active", account.Active))

	start := time.Now()
	err := conn(ctx, r.db).QueryRow(ctx, updateAccountSQL,
		account.Credential,
		account.Active,
		account.ID,
	).Scan(
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	observe("update_account", start, err)

	if err != nil {
		translatedErr := translateDBError(err, logger)
		if errors.Is(translatedErr, apperrors.ErrNotFound) {
			logger.WarnContext(ctx, "Update affected zero rows, account not found")
			return fmt.Errorf("account %d: %w", account.ID, apperrors.ErrNotFound)
		}
		logger.ErrorContext(ctx, "Failed to update account", slog.Any("error", err))
		return translatedErr
	}

	logger.InfoContext(ctx, "Account updated successfully")
	return nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id int64) (*customer.Account, error) {
	var account customer.Account
	start := time.Now()
	err := conn(ctx, r.db).QueryRow(ctx, selectAccountByIDSQL, id).Scan(
		&account.ID,
		&account.Credential,
		&account.Active,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	observe("select_account_by_id", start, err)

	if err != nil {
		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrNotFound) {
			r.logger.DebugContext(ctx, "Account not found", slog.Int64("customerID", id))
			return nil, fmt.Errorf("account %d: %w", id, apperrors.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to query/scan account by ID", slog.Any("error", err))
		return nil, translatedErr
	}

	return &account, nil
}

func (r *AccountRepository) FindAll(ctx context.Context) ([]*customer.Account, error) {
	r.logger.InfoContext(ctx, "Attempting to find all accounts")

	start := time.Now()
	rows, err := conn(ctx, r.db).Query(ctx, selectAllAccountsSQL)
	if err != nil {
		observe("select_all_accounts", start, err)
		r.logger.ErrorContext(ctx, "Failed to query accounts", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query accounts: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	accounts := make([]*customer.Account, 0)
	for rows.Next() {
		var account customer.Account
		err := rows.Scan(
			&account.ID,
			&account.Credential,
			&account.Active,
			&account.CreatedAt,
			&account.UpdatedAt,
		)
		if err != nil {
			observe("select_all_accounts", start, err)
			r.logger.ErrorContext(ctx, "Failed to scan account row", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan account row: %w", apperrors.ErrDatabase, err)
		}
		accounts = append(accounts, &account)
	}

	err = rows.Err()
	observe("select_all_accounts", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error iterating account rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating account rows: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Finished finding accounts", slog.Int("count", len(accounts)))
	return accounts, nil
}

func (r *AccountRepository) DeleteByID(ctx context.Context, id int64) error {
	logger := r.logger.With(slog.Int64("customerID", id))
	logger.InfoContext(ctx, "Attempting to delete account")

	start := time.Now()
	cmdTag, err := conn(ctx, r.db).Exec(ctx, deleteAccountSQL, id)
	observe("delete_account", start, err)

	if err != nil {
		logger.ErrorContext(ctx, "Failed to execute delete account", slog.Any("error", err))
		return translateDBError(err, logger)
	}

	if cmdTag.RowsAffected() == 0 {
		logger.WarnContext(ctx, "Delete affected zero rows, account not found")
		return fmt.Errorf("account %d: %w", id, apperrors.ErrNotFound)
	}

	logger.InfoContext(ctx, "Account deleted successfully")
	return nil
}
