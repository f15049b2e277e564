package customer

import (
	"context"
	"customer-service/internal/pkg/apperrors"
	"errors"
	"fmt"
)

var (
	ErrNotFound = fmt.Errorf("customer not found: %w", apperrors.ErrNotFound)

	ErrAlreadyExists = fmt.Errorf("customer already exists: %w", apperrors.ErrAlreadyExists)

	// ErrInactive is declared for operations that require an active account.
	ErrInactive = fmt.Errorf("customer account is inactive: %w", apperrors.ErrInactiveCustomer)

	ErrInconsistentAggregate = errors.New("identity and account records do not share the same id")
)

// IdentityStore persists identity records. Save assigns a fresh id when ID is zero
// and overwrites the mutable fields otherwise. Identification is unique; a violation
// surfaces as an error wrapping apperrors.ErrAlreadyExists.
type IdentityStore interface {
	Save(ctx context.Context, identity *Identity) error

	FindByID(ctx context.Context, id int64) (*Identity, error)

	FindByIdentification(ctx context.Context, identification string) (*Identity, error)

	ExistsByIdentification(ctx context.Context, identification string) (bool, error)

	DeleteByID(ctx context.Context, id int64) error
}

// AccountStore persists account records. Save never generates a key: the caller
// supplies the id of the owning identity.
type AccountStore interface {
	Save(ctx context.Context, account *Account) error

	Update(ctx context.Context, account *Account) error

	FindByID(ctx context.Context, id int64) (*Account, error)

	FindAll(ctx context.Context) ([]*Account, error)

	DeleteByID(ctx context.Context, id int64) error
}

// Transactor runs fn inside one storage transaction carried by the returned context.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repository is the customer-level view over the identity and account stores.
type Repository interface {
	Create(ctx context.Context, draft *Customer) (*Customer, error)

	FindByID(ctx context.Context, id int64) (*Customer, error)

	FindAll(ctx context.Context) ([]*Customer, error)

	FindByIdentification(ctx context.Context, identification string) (*Customer, error)

	Update(ctx context.Context, customer *Customer) (*Customer, error)

	DeleteByID(ctx context.Context, id int64) error

	ExistsByIdentification(ctx context.Context, identification string) (bool, error)
}

type CredentialHasher interface {
	Hash(plain string) (string, error)
}

// Cache holds read views by id. Implementations must treat failures as misses.
type Cache interface {
	Get(ctx context.Context, id int64) (*Customer, bool)
	// Set stores the view written by a successful write, replacing any entry.
	Set(ctx context.Context, customer *Customer)
	// Fill stores a view loaded on a read miss only when no entry exists, so a
	// read that raced a write or a delete cannot put back an older view.
	Fill(ctx context.Context, customer *Customer)
	Delete(ctx context.Context, id int64)
	// MarkDeleted replaces the entry with a short-lived marker that blocks Fill.
	MarkDeleted(ctx context.Context, id int64)
}

type noopCache struct{}

func (noopCache) Get(context.Context, int64) (*Customer, bool) { return nil, false }
func (noopCache) Set(context.Context, *Customer)               {}
func (noopCache) Fill(context.Context, *Customer)              {}
func (noopCache) Delete(context.Context, int64)                {}
func (noopCache) MarkDeleted(context.Context, int64)           {}
