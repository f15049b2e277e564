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

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	insertIdentitySQL = `
        INSERT INTO persons (name, gender, identification, address, phone, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
        RETURNING id, created_at, updated_at`

	updateIdentitySQL = `
        UPDATE persons
        SET name = $1,
            gender = $2,
            address = $3,
            phone = $4,
            updated_at = NOW()
        WHERE id = $5
        RETURNING identification, created_at, updated_at`

	selectIdentityByIDSQL = `
        SELECT id, name, gender, identification, address, phone, created_at, updated_at
        FROM persons
        WHERE id = $1`

	selectIdentityByIdentificationSQL = `
        SELECT id, name, gender, identification, address, phone, created_at, updated_at
        FROM persons
        WHERE identification = $1`

	existsIdentificationSQL = `SELECT EXISTS(SELECT 1 FROM persons WHERE identification = $1)`

	deleteIdentitySQL = `DELETE FROM persons WHERE id = $1`
)

// IdentityRepository stores identity records in the persons table.
type IdentityRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.IdentityStore = (*IdentityRepository)(nil)

func NewIdentityRepository(db DBPool, logger *slog.Logger) *IdentityRepository {
	if db == nil {
		panic("DBPool cannot be nil for IdentityRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewIdentityRepository, using default stderr handler")
	}
	return &IdentityRepository{
		db:     db,
		logger: logger.With("component", "IdentityRepository"),
	}
}

func (r *IdentityRepository) Save(ctx context.Context, identity *customer.Identity) error {
	if identity == nil {
		return fmt.Errorf("%w: identity cannot be nil", apperrors.ErrInvalidArgument)
	}

	if identity.ID == 0 {
		return r.insert(ctx, identity)
	}
	return r.update(ctx, identity)
}

func (r *IdentityRepository) insert(ctx context.Context, identity *customer.Identity) error {
	r.logger.InfoContext(ctx, "Attempting to insert new identity")

	start := time.Now()
	err := conn(ctx, r.db).QueryRow(ctx, insertIdentitySQL,
		identity.Name,
		identity.Gender,
		identity.Identification,
		identity.Address,
		identity.Phone,
	).Scan(
		&identity.ID,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	observe("insert_identity", start, err)

	if err != nil {
		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrAlreadyExists) {
			r.logger.WarnContext(ctx, "Failed to insert identity due to unique constraint violation")
			return translatedErr
		}
		r.logger.ErrorContext(ctx, "Failed to insert identity", slog.Any("error", err))
		return fmt.Errorf("%w: failed to insert identity: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Identity inserted successfully", slog.Int64("customerID", identity.ID))
	return nil
}

// update overwrites the mutable fields. Identification is never rewritten.
func (r *IdentityRepository) update(ctx context.Context, identity *customer.Identity) error {
	logger := r.logger.With(slog.Int64("customerID", identity.ID))
	logger.InfoContext(ctx, "Attempting to update identity")

	start := time.Now()
	err := conn(ctx, r.db).QueryRow(ctx, updateIdentitySQL,
		identity.Name,
		identity.Gender,
		identity.Address,
		identity.Phone,
		identity.ID,
	).Scan(
		&identity.Identification,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	observe("update_identity", start, err)

	if err != nil {
		translatedErr := translateDBError(err, logger)
		if errors.Is(translatedErr, apperrors.ErrNotFound) {
			logger.WarnContext(ctx, "Update affected zero rows, identity not found")
			return fmt.Errorf("identity %d: %w", identity.ID, apperrors.ErrNotFound)
		}
		logger.ErrorContext(ctx, "Failed to update identity", slog.Any("error", err))
		return translatedErr
	}

	logger.InfoContext(ctx, "Identity updated successfully")
	return nil
}

func (r *IdentityRepository) FindByID(ctx context.Context, id int64) (*customer.Identity, error) {
	return r.findOne(ctx, "select_identity_by_id", selectIdentityByIDSQL, id)
}

func (r *IdentityRepository) FindByIdentification(ctx context.Context, identification string) (*customer.Identity, error) {
	return r.findOne(ctx, "select_identity_by_identification", selectIdentityByIdentificationSQL, identification)
}

func (r *IdentityRepository) findOne(ctx context.Context, queryName, query string, arg any) (*customer.Identity, error) {
	r.logger.DebugContext(ctx, "Attempting to find identity", slog.String("query", queryName))

	var identity customer.Identity
	start := time.Now()
	err := conn(ctx, r.db).QueryRow(ctx, query, arg).Scan(
		&identity.ID,
		&identity.Name,
		&identity.Gender,
		&identity.Identification,
		&identity.Address,
		&identity.Phone,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	observe(queryName, start, err)

	if err != nil {
		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrNotFound) {
			r.logger.DebugContext(ctx, "Identity not found", slog.String("query", queryName))
			return nil, translatedErr
		}
		r.logger.ErrorContext(ctx, "Failed to query/scan identity", slog.String("query", queryName), slog.Any("error", err))
		return nil, translatedErr
	}

	return &identity, nil
}

func (r *IdentityRepository) ExistsByIdentification(ctx context.Context, identification string) (bool, error) {
	var exists bool
	start := time.Now()
	err := conn(ctx, r.db).QueryRow(ctx, existsIdentificationSQL, identification).Scan(&exists)
	observe("exists_identification", start, err)

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to check identification", slog.Any("error", err))
		return false, fmt.Errorf("%w: failed to check identification: %w", apperrors.ErrDatabase, err)
	}
	return exists, nil
}

func (r *IdentityRepository) DeleteByID(ctx context.Context, id int64) error {
	logger := r.logger.With(slog.Int64("customerID", id))
	logger.InfoContext(ctx, "Attempting to delete identity")

	start := time.Now()
	cmdTag, err := conn(ctx, r.db).Exec(ctx, deleteIdentitySQL, id)
	observe("delete_identity", start, err)

	if err != nil {
		logger.ErrorContext(ctx, "Failed to execute delete identity", slog.Any("error", err))
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return fmt.Errorf("%w: identity %d is still referenced by an account", apperrors.ErrDatabase, id)
		}
		return translateDBError(err, logger)
	}

	if cmdTag.RowsAffected() == 0 {
		logger.WarnContext(ctx, "Delete affected zero rows, identity not found")
		return fmt.Errorf("identity %d: %w", id, apperrors.ErrNotFound)
	}

	logger.InfoContext(ctx, "Identity deleted successfully")
	return nil
}
