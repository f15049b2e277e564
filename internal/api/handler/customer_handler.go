package handler

import (
	"context"
	"customer-service/internal/api/handler/dto"
	"customer-service/internal/domain/customer"
	"customer-service/internal/infrastructure/monitoring"
	"customer-service/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

type CustomerHandler struct {
	service customer.CustomerService
	logger  *slog.Logger
}

func NewCustomerHandler(s customer.CustomerService, l *slog.Logger) *CustomerHandler {
	if s == nil {
		panic("customer service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &CustomerHandler{
		service: s,
		logger:  l.With("component", "CustomerHandler"),
	}
}

func getCustomerIDFromURL(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "customerID")
	if idStr == "" {
		return 0, fmt.Errorf("%w: customerID not found in URL path", apperrors.ErrInvalidArgument)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid customerID format in URL path: %s", apperrors.ErrInvalidArgument, idStr)
	}
	return id, nil
}

// logServiceError logs expected client-side outcomes at warn and everything else at error.
func (h *CustomerHandler) logServiceError(ctx context.Context, logger *slog.Logger, msg string, err error) {
	level := slog.LevelError
	switch {
	case errors.Is(err, apperrors.ErrPartialWrite):
	case errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrAlreadyExists),
		errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrInvalidArgument):
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, msg, slog.Any("error", err))
}

// CreateCustomer handles POST /customers
// @Summary Create a new customer
// @Description Registers the identity and account records of a new customer. The identification must not be registered yet.
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body dto.CreateCustomerRequest true "Customer creation request"
// @Success 201 {object} dto.CustomerResponse "Customer successfully created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 409 {object} dto.ErrorResponse "Identification already registered"
// @Failure 500 {object} dto.ErrorResponse "Internal server error during creation"
// @Router /customers [post]
// @Security BearerAuth
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received create customer request")

	var req dto.CreateCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Request validation failed", slog.Any("error", err))
		respondError(w, err)
		return
	}
	h.logger.DebugContext(r.Context(), "Request validation passed")

	created, err := h.service.CreateCustomer(r.Context(), req.ToCustomer())
	if err != nil {
		h.logServiceError(r.Context(), h.logger, "Service failed to create customer", err)
		respondError(w, err)
		return
	}

	monitoring.RecordCustomerLifecycle("created")
	resp := dto.NewCustomerResponse(created)
	h.logger.InfoContext(r.Context(), "Customer created successfully", slog.Int64("customerID", resp.ID))
	respondJSON(w, http.StatusCreated, resp)
}

// GetCustomer handles GET /customers/{customerID}
// @Summary Retrieve customer details
// @Description Retrieves the merged identity and account view of a customer by ID.
// @Tags Customers
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {object} dto.CustomerResponse "Customer details retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID format"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID} [get]
// @Security BearerAuth
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	logger := h.logger.With(slog.Int64("customerID", customerID))
	logger.DebugContext(r.Context(), "Received get customer request")

	found, err := h.service.GetCustomer(r.Context(), customerID)
	if err != nil {
		h.logServiceError(r.Context(), logger, "Service failed to get customer", err)
		respondError(w, err)
		return
	}

	logger.InfoContext(r.Context(), "Customer retrieved successfully")
	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(found))
}

// GetCustomerByIdentification handles GET /customers/identification/{identification}
// @Summary Retrieve customer by identification
// @Description Retrieves a customer by the national identification number.
// @Tags Customers
// @Produce json
// @Param identification path string true "Identification (10 to 20 digits)"
// @Success 200 {object} dto.CustomerResponse "Customer details retrieved"
// @Failure 400 {object} dto.ErrorResponse "Missing identification"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/identification/{identification} [get]
// @Security BearerAuth
func (h *CustomerHandler) GetCustomerByIdentification(w http.ResponseWriter, r *http.Request) {
	identification := strings.TrimSpace(chi.URLParam(r, "identification"))
	if identification == "" {
		h.logger.WarnContext(r.Context(), "Identification missing from URL")
		respondError(w, apperrors.NewValidationError("identification", "identification is required"))
		return
	}

	h.logger.DebugContext(r.Context(), "Received get customer by identification request")

	found, err := h.service.GetCustomerByIdentification(r.Context(), identification)
	if err != nil {
		h.logServiceError(r.Context(), h.logger, "Service failed to get customer by identification", err)
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer retrieved by identification", slog.Int64("customerID", found.ID))
	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(found))
}

// ListCustomers handles GET /customers
// @Summary List customers
// @Description Lists every customer that has both an identity and an account record, active or not.
// @Tags Customers
// @Produce json
// @Success 200 {array} dto.CustomerResponse "List of customers"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers [get]
// @Security BearerAuth
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received list customers request")

	customers, err := h.service.ListCustomers(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to list customers", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := dto.NewCustomerListResponse(customers)
	h.logger.InfoContext(r.Context(), "Customers listed successfully", slog.Int("count", len(resp)))
	respondJSON(w, http.StatusOK, resp)
}

// UpdateCustomer handles PUT /customers/{customerID}
// @Summary Partially update a customer
// @Description Updates any subset of name, gender, address, phone, password and status. Identification cannot be changed.
// @Tags Customers
// @Accept json
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Param request body dto.UpdateCustomerRequest true "Fields to change"
// @Success 200 {object} dto.CustomerResponse "Customer successfully updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID or request payload"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID} [put]
// @Security BearerAuth
func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	logger := h.logger.With(slog.Int64("customerID", customerID))
	logger.DebugContext(r.Context(), "Received update customer request")

	var req dto.UpdateCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		logger.WarnContext(r.Context(), "Request validation failed", slog.Any("error", err))
		respondError(w, err)
		return
	}

	updated, err := h.service.UpdateCustomer(r.Context(), customerID, req.ToPatch())
	if err != nil {
		h.logServiceError(r.Context(), logger, "Service failed to update customer", err)
		respondError(w, err)
		return
	}

	monitoring.RecordCustomerLifecycle("updated")
	logger.InfoContext(r.Context(), "Customer updated successfully")
	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(updated))
}

// DeactivateCustomer handles DELETE /customers/{customerID}
// @Summary Deactivate a customer
// @Description Soft delete: marks the account as inactive. Both records stay retrievable.
// @Tags Customers
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 204 "Customer successfully deactivated"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID} [delete]
// @Security BearerAuth
func (h *CustomerHandler) DeactivateCustomer(w http.ResponseWriter, r *http.Request) {
	h.lifecycleAction(w, r, "deactivated", h.service.DeactivateCustomer)
}

// ReactivateCustomer handles PUT /customers/{customerID}/reactivate
// @Summary Reactivate a customer
// @Description Marks a previously deactivated account as active again.
// @Tags Customers
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 204 "Customer successfully reactivated"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID}/reactivate [put]
// @Security BearerAuth
func (h *CustomerHandler) ReactivateCustomer(w http.ResponseWriter, r *http.Request) {
	h.lifecycleAction(w, r, "reactivated", h.service.ReactivateCustomer)
}

// DeleteCustomer handles DELETE /customers/{customerID}/hard
// @Summary Permanently delete a customer
// @Description Hard delete: removes the account record and then the identity record.
// @Tags Customers
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 204 "Customer successfully deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID}/hard [delete]
// @Security BearerAuth
func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	h.lifecycleAction(w, r, "deleted", h.service.DeleteCustomer)
}

func (h *CustomerHandler) lifecycleAction(w http.ResponseWriter, r *http.Request, action string, op func(ctx context.Context, customerID int64) error) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	logger := h.logger.With(slog.Int64("customerID", customerID), slog.String("action", action))
	logger.DebugContext(r.Context(), "Received customer lifecycle request")

	if err := op(r.Context(), customerID); err != nil {
		h.logServiceError(r.Context(), logger, "Service failed to change customer lifecycle", err)
		respondError(w, err)
		return
	}

	monitoring.RecordCustomerLifecycle(action)
	logger.InfoContext(r.Context(), "Customer lifecycle changed successfully")
	respondJSON(w, http.StatusNoContent, nil)
}
