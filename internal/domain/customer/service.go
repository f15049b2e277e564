package customer

import (
	"context"
	"customer-service/internal/event"
	"customer-service/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

const (
	inputValidationPassed = "Input validation passed"
	customerNotFound      = "Customer not found by repository"
)

type CustomerService interface {
	CreateCustomer(ctx context.Context, draft *Customer) (*Customer, error)
	GetCustomer(ctx context.Context, customerID int64) (*Customer, error)
	GetCustomerByIdentification(ctx context.Context, identification string) (*Customer, error)
	ListCustomers(ctx context.Context) ([]*Customer, error)
	UpdateCustomer(ctx context.Context, customerID int64, patch Patch) (*Customer, error)
	DeactivateCustomer(ctx context.Context, customerID int64) error
	ReactivateCustomer(ctx context.Context, customerID int64) error
	DeleteCustomer(ctx context.Context, customerID int64) error
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo   Repository
	hasher CredentialHasher
	pub    event.EventPublisher
	cache  Cache
	logger *slog.Logger
}

// NewCustomerService builds the service. A nil publisher drops events and a nil
// cache sends every read to the repository.
func NewCustomerService(repo Repository, hasher CredentialHasher, eventPublisher event.EventPublisher, cache Cache, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}
	if hasher == nil {
		panic("credential hasher cannot be nil")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}

	if eventPublisher == nil {
		logger.Warn("Warning: No event publisher provided to NewCustomerService, customer events will be dropped")
		eventPublisher = event.NoopPublisher{}
	}

	if cache == nil {
		cache = noopCache{}
	}

	return &customerService{
		repo:   repo,
		hasher: hasher,
		pub:    eventPublisher,
		cache:  cache,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func NewCustomerEventPayload(cust *Customer) event.CustomerEventPayload {
	if cust == nil {
		return event.CustomerEventPayload{}
	}
	return event.CustomerEventPayload{
		CustomerID:     cust.ID,
		Name:           cust.Name,
		Identification: cust.Identification,
		Active:         cust.Active,
		CreatedAt:      cust.CreatedAt,
		UpdatedAt:      cust.UpdatedAt,
	}
}

func (s *customerService) CreateCustomer(ctx context.Context, draft *Customer) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to create new customer")

	if draft == nil {
		return nil, apperrors.NewValidationError("", "customer data is required")
	}

	candidate := *draft
	candidate.ID = 0
	candidate.Name = strings.TrimSpace(candidate.Name)
	candidate.Identification = strings.TrimSpace(candidate.Identification)
	if candidate.Name == "" {
		s.logger.WarnContext(ctx, "Validation failed: name is empty")
		return nil, apperrors.NewValidationError("name", "name cannot be empty")
	}
	if candidate.Identification == "" {
		s.logger.WarnContext(ctx, "Validation failed: identification is empty")
		return nil, apperrors.NewValidationError("identification", "identification cannot be empty")
	}
	if strings.TrimSpace(candidate.Credential) == "" {
		s.logger.WarnContext(ctx, "Validation failed: credential is empty")
		return nil, apperrors.NewValidationError("password", "password cannot be empty")
	}

	logger := s.logger.With(slog.String("identification", candidate.Identification))
	logger.InfoContext(ctx, inputValidationPassed)

	exists, err := s.repo.ExistsByIdentification(ctx, candidate.Identification)
	if err != nil {
		logger.ErrorContext(ctx, "Repository error checking identification", slog.Any("error", err))
		return nil, fmt.Errorf("failed to check identification: %w", err)
	}
	if exists {
		logger.WarnContext(ctx, "Business rule failed: identification already registered")
		return nil, ErrAlreadyExists
	}

	hashed, err := s.hasher.Hash(candidate.Credential)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to hash credential", slog.Any("error", err))
		return nil, fmt.Errorf("failed to hash credential: %w", err)
	}
	candidate.Credential = hashed
	candidate.Active = true

	logger.InfoContext(ctx, "Calling repository Create")
	created, err := s.repo.Create(ctx, &candidate)
	if err != nil {
		if !errors.Is(err, apperrors.ErrPartialWrite) && errors.Is(err, apperrors.ErrAlreadyExists) {
			logger.WarnContext(ctx, "Identification registered concurrently, storage constraint rejected the insert")
			return nil, ErrAlreadyExists
		}
		logger.ErrorContext(ctx, "Repository failed to create customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	logger = logger.With(slog.Int64("customerID", created.ID))
	s.cache.Set(ctx, created)

	createdEvent := event.CustomerCreatedEvent{
		Timestamp: time.Now(),
		Payload:   NewCustomerEventPayload(created),
	}
	if pubErr := s.pub.PublishCustomerCreated(ctx, createdEvent); pubErr != nil {
		logger.ErrorContext(ctx, "Customer created, but FAILED to publish creation event", slog.Any("error", pubErr))
	}

	logger.InfoContext(ctx, "Successfully created new customer")
	return created, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	logger := s.logger.With(slog.Int64("customerID", customerID))
	logger.InfoContext(ctx, "Attempting to get customer by ID")

	if cached, ok := s.cache.Get(ctx, customerID); ok {
		logger.DebugContext(ctx, "Customer served from cache")
		return cached, nil
	}

	customer, err := s.fetch(ctx, logger, customerID)
	if err != nil {
		return nil, err
	}
	s.cache.Fill(ctx, customer)

	logger.InfoContext(ctx, "Successfully retrieved customer")
	return customer, nil
}

func (s *customerService) GetCustomerByIdentification(ctx context.Context, identification string) (*Customer, error) {
	identification = strings.TrimSpace(identification)
	logger := s.logger.With(slog.String("identification", identification))
	logger.InfoContext(ctx, "Attempting to get customer by identification")

	if identification == "" {
		return nil, apperrors.NewValidationError("identification", "identification cannot be empty")
	}

	customer, err := s.repo.FindByIdentification(ctx, identification)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.WarnContext(ctx, customerNotFound)
			return nil, ErrNotFound
		}
		logger.ErrorContext(ctx, "Repository error finding customer by identification", slog.Any("error", err))
		return nil, fmt.Errorf("failed to find customer by identification: %w", err)
	}

	logger.InfoContext(ctx, "Successfully found customer by identification", slog.Int64("customerID", customer.ID))
	return customer, nil
}

func (s *customerService) ListCustomers(ctx context.Context) ([]*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to list all customers")

	customers, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing customers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	if customers == nil {
		customers = []*Customer{}
	}

	s.logger.InfoContext(ctx, "Successfully retrieved customers", slog.Int("count", len(customers)))
	return customers, nil
}

// UpdateCustomer merges the present fields of patch onto the stored customer
// and always saves it, so both updated-at stamps advance even for a no-op patch.
func (s *customerService) UpdateCustomer(ctx context.Context, customerID int64, patch Patch) (*Customer, error) {
	logger := s.logger.With(slog.Int64("customerID", customerID))
	logger.InfoContext(ctx, "Attempting to update customer")

	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		logger.WarnContext(ctx, "Validation failed: name is empty")
		return nil, apperrors.NewValidationError("name", "name cannot be empty")
	}
	if patch.Credential != nil && strings.TrimSpace(*patch.Credential) == "" {
		logger.WarnContext(ctx, "Validation failed: credential is empty")
		return nil, apperrors.NewValidationError("password", "password cannot be empty")
	}

	existing, err := s.fetch(ctx, logger, customerID)
	if err != nil {
		return nil, err
	}

	if patch.Credential != nil {
		hashed, err := s.hasher.Hash(*patch.Credential)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to hash credential", slog.Any("error", err))
			return nil, fmt.Errorf("failed to hash credential: %w", err)
		}
		patch.Credential = &hashed
	}

	if !patch.ApplyTo(existing) {
		logger.InfoContext(ctx, "No field value changed, saving to refresh timestamps")
	}

	updated, err := s.persist(ctx, logger, existing)
	if err != nil {
		return nil, err
	}

	s.publishUpdated(ctx, logger, updated, event.ReasonUpdated)
	logger.InfoContext(ctx, "Successfully updated customer")
	return updated, nil
}

// DeactivateCustomer is the soft delete. Both records stay in storage.
func (s *customerService) DeactivateCustomer(ctx context.Context, customerID int64) error {
	logger := s.logger.With(slog.Int64("customerID", customerID))
	logger.InfoContext(ctx, "Attempting to deactivate customer")

	existing, err := s.fetch(ctx, logger, customerID)
	if err != nil {
		return err
	}
	existing.Deactivate()

	updated, err := s.persist(ctx, logger, existing)
	if err != nil {
		return err
	}

	s.publishUpdated(ctx, logger, updated, event.ReasonDeactivated)
	logger.InfoContext(ctx, "Successfully deactivated customer")
	return nil
}

func (s *customerService) ReactivateCustomer(ctx context.Context, customerID int64) error {
	logger := s.logger.With(slog.Int64("customerID", customerID))
	logger.InfoContext(ctx, "Attempting to reactivate customer")

	existing, err := s.fetch(ctx, logger, customerID)
	if err != nil {
		return err
	}
	existing.Activate()

	updated, err := s.persist(ctx, logger, existing)
	if err != nil {
		return err
	}

	s.publishUpdated(ctx, logger, updated, event.ReasonReactivated)
	logger.InfoContext(ctx, "Successfully reactivated customer")
	return nil
}

// DeleteCustomer removes both records. It cannot be undone.
func (s *customerService) DeleteCustomer(ctx context.Context, customerID int64) error {
	logger := s.logger.With(slog.Int64("customerID", customerID))
	logger.InfoContext(ctx, "Attempting to hard delete customer")

	if _, err := s.fetch(ctx, logger, customerID); err != nil {
		return err
	}

	if err := s.repo.DeleteByID(ctx, customerID); err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.WarnContext(ctx, "Customer disappeared before delete completed")
			return ErrNotFound
		}
		logger.ErrorContext(ctx, "Repository failed to delete customer", slog.Any("error", err))
		return fmt.Errorf("failed to delete customer %d: %w", customerID, err)
	}
	s.cache.MarkDeleted(ctx, customerID)

	deletedEvent := event.CustomerDeletedEvent{Timestamp: time.Now(), CustomerID: customerID}
	if pubErr := s.pub.PublishCustomerDeleted(ctx, deletedEvent); pubErr != nil {
		logger.ErrorContext(ctx, "Customer deleted, but FAILED to publish deletion event", slog.Any("error", pubErr))
	}

	logger.InfoContext(ctx, "Successfully deleted customer")
	return nil
}

func (s *customerService) fetch(ctx context.Context, logger *slog.Logger, customerID int64) (*Customer, error) {
	customer, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.WarnContext(ctx, customerNotFound)
			return nil, ErrNotFound
		}
		logger.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}
	return customer, nil
}

func (s *customerService) persist(ctx context.Context, logger *slog.Logger, customer *Customer) (*Customer, error) {
	updated, err := s.repo.Update(ctx, customer)
	if err != nil {
		s.cache.Delete(ctx, customer.ID)
		if errors.Is(err, ErrNotFound) {
			logger.WarnContext(ctx, "Customer disappeared before update completed")
			return nil, ErrNotFound
		}
		logger.ErrorContext(ctx, "Repository failed to update customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to update customer %d: %w", customer.ID, err)
	}
	s.cache.Set(ctx, updated)
	return updated, nil
}

func (s *customerService) publishUpdated(ctx context.Context, logger *slog.Logger, customer *Customer, reason string) {
	updatedEvent := event.CustomerUpdatedEvent{
		Timestamp: time.Now(),
		Reason:    reason,
		Payload:   NewCustomerEventPayload(customer),
	}
	if err := s.pub.PublishCustomerUpdated(ctx, updatedEvent); err != nil {
		logger.ErrorContext(ctx, "Failed to publish customer update event", slog.String("reason", reason), slog.Any("error", err))
	}
}
