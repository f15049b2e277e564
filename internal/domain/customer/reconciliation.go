package customer

import (
	"context"
	"customer-service/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// ReconciliationRepository composes the identity and account stores into the
// customer aggregate. Writes go identity first on create and account first on
// delete, so the only partial state that can survive a failure is an identity
// without an account.
//
// With a Transactor both writes of an operation share one transaction. Without
// one they are sequential, and a failure of the second write is reported as
// apperrors.ErrPartialWrite.
type ReconciliationRepository struct {
	identities IdentityStore
	accounts   AccountStore
	tx         Transactor
	logger     *slog.Logger
}

var _ Repository = (*ReconciliationRepository)(nil)

func NewReconciliationRepository(identities IdentityStore, accounts AccountStore, tx Transactor, logger *slog.Logger) *ReconciliationRepository {
	if identities == nil || accounts == nil {
		panic("identity and account stores cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewReconciliationRepository, using default stderr handler")
	}
	return &ReconciliationRepository{
		identities: identities,
		accounts:   accounts,
		tx:         tx,
		logger:     logger.With(slog.String("component", "ReconciliationRepository"), slog.Bool("atomicWrites", tx != nil)),
	}
}

func (r *ReconciliationRepository) Create(ctx context.Context, draft *Customer) (*Customer, error) {
	if draft == nil {
		return nil, fmt.Errorf("%w: customer draft is nil", apperrors.ErrInvalidArgument)
	}
	if draft.ID != 0 {
		return nil, fmt.Errorf("%w: customer draft already has id %d", apperrors.ErrInvalidArgument, draft.ID)
	}

	identity := draft.Identity()
	err := r.inWriteScope(ctx, func(ctx context.Context) error {
		if err := r.identities.Save(ctx, &identity); err != nil {
			return fmt.Errorf("failed to save identity: %w", err)
		}

		account := draft.Account()
		account.ID = identity.ID
		if err := r.accounts.Save(ctx, &account); err != nil {
			return r.secondWriteFailed(ctx, "create", identity.ID, fmt.Errorf("failed to save account: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.DebugContext(ctx, "Identity and account persisted", slog.Int64("customerID", identity.ID))
	return r.FindByID(ctx, identity.ID)
}

func (r *ReconciliationRepository) FindByID(ctx context.Context, id int64) (*Customer, error) {
	account, err := r.accounts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account %d: %w", id, err)
	}

	identity, err := r.identities.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			r.logger.ErrorContext(ctx, "Integrity risk: account exists without identity", slog.Int64("customerID", id))
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find identity %d: %w", id, err)
	}

	return Merge(*identity, *account)
}

// FindAll issues one identity lookup per account.
func (r *ReconciliationRepository) FindAll(ctx context.Context) ([]*Customer, error) {
	accounts, err := r.accounts.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	customers := make([]*Customer, 0, len(accounts))
	for _, account := range accounts {
		identity, err := r.identities.FindByID(ctx, account.ID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				r.logger.ErrorContext(ctx, "Integrity risk: skipping account without identity", slog.Int64("customerID", account.ID))
				continue
			}
			return nil, fmt.Errorf("failed to find identity %d: %w", account.ID, err)
		}

		customer, err := Merge(*identity, *account)
		if err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}
	return customers, nil
}

func (r *ReconciliationRepository) FindByIdentification(ctx context.Context, identification string) (*Customer, error) {
	identity, err := r.identities.FindByIdentification(ctx, identification)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find identity by identification: %w", err)
	}

	account, err := r.accounts.FindByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			r.logger.WarnContext(ctx, "Identity found without account, treating customer as absent", slog.Int64("customerID", identity.ID))
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account %d: %w", identity.ID, err)
	}

	return Merge(*identity, *account)
}

// Update overwrites the mutable identity fields, then the account's credential
// and status, and returns the re-read aggregate.
func (r *ReconciliationRepository) Update(ctx context.Context, customer *Customer) (*Customer, error) {
	if customer == nil || customer.ID <= 0 {
		return nil, fmt.Errorf("%w: customer to update must carry an id", apperrors.ErrInvalidArgument)
	}

	identity := customer.Identity()
	account := customer.Account()
	err := r.inWriteScope(ctx, func(ctx context.Context) error {
		if err := r.identities.Save(ctx, &identity); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to update identity: %w", err)
		}
		if err := r.accounts.Update(ctx, &account); err != nil {
			return r.secondWriteFailed(ctx, "update", customer.ID, fmt.Errorf("failed to update account: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.FindByID(ctx, customer.ID)
}

func (r *ReconciliationRepository) DeleteByID(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid customer id %d", apperrors.ErrInvalidArgument, id)
	}

	return r.inWriteScope(ctx, func(ctx context.Context) error {
		if err := r.accounts.DeleteByID(ctx, id); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to delete account: %w", err)
		}
		if err := r.identities.DeleteByID(ctx, id); err != nil {
			return r.secondWriteFailed(ctx, "delete", id, fmt.Errorf("failed to delete identity: %w", err))
		}
		return nil
	})
}

func (r *ReconciliationRepository) ExistsByIdentification(ctx context.Context, identification string) (bool, error) {
	exists, err := r.identities.ExistsByIdentification(ctx, identification)
	if err != nil {
		return false, fmt.Errorf("failed to check identification: %w", err)
	}
	return exists, nil
}

func (r *ReconciliationRepository) inWriteScope(ctx context.Context, fn func(ctx context.Context) error) error {
	if r.tx == nil {
		return fn(ctx)
	}
	return r.tx.WithinTx(ctx, fn)
}

// secondWriteFailed is called once the first record of an operation is written.
// Inside a transaction the error is returned as is and the caller's rollback
// undoes the first write.
func (r *ReconciliationRepository) secondWriteFailed(ctx context.Context, operation string, id int64, err error) error {
	if r.tx != nil {
		return err
	}
	r.logger.ErrorContext(ctx, "Integrity risk: second write failed after first was persisted",
		slog.String("operation", operation),
		slog.Int64("customerID", id),
		slog.Any("error", err))
	return apperrors.WrapPartialWrite(err, fmt.Sprintf("%s of customer %d stopped after the first record", operation, id))
}
