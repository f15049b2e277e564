package dto

import (
	"customer-service/internal/domain/customer"
	"customer-service/internal/pkg/apperrors"
	"strings"
	"time"
)

type CreateCustomerRequest struct {
	Name           string `json:"name" validate:"required,min=2,max=100"`
	Gender         string `json:"gender,omitempty" validate:"max=20"`
	Identification string `json:"identification" validate:"required,identification"`
	Address        string `json:"address,omitempty" validate:"max=200"`
	Phone          string `json:"phone,omitempty" validate:"omitempty,phone"`
	Password       string `json:"password" validate:"required,min=4,max=255"`
}

func (r *CreateCustomerRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Identification = strings.TrimSpace(r.Identification)
	return validateStruct(r)
}

func (r *CreateCustomerRequest) ToCustomer() *customer.Customer {
	return customer.NewCustomer(
		r.Name,
		strings.TrimSpace(r.Gender),
		r.Identification,
		strings.TrimSpace(r.Address),
		strings.TrimSpace(r.Phone),
		r.Password,
	)
}

// UpdateCustomerRequest is a partial update. Absent fields keep their stored value.
// There is no identification field: unknown fields are rejected by the decoder.
type UpdateCustomerRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Gender   *string `json:"gender,omitempty" validate:"omitempty,max=20"`
	Address  *string `json:"address,omitempty" validate:"omitempty,max=200"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,phone"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=4,max=255"`
	Status   *bool   `json:"status,omitempty"`
}

func (r *UpdateCustomerRequest) Validate() error {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" {
			return apperrors.NewValidationError("name", "name is required")
		}
		r.Name = &name
	}
	return validateStruct(r)
}

func (r *UpdateCustomerRequest) ToPatch() customer.Patch {
	return customer.Patch{
		Name:       r.Name,
		Gender:     trimmed(r.Gender),
		Address:    trimmed(r.Address),
		Phone:      trimmed(r.Phone),
		Credential: r.Password,
		Active:     r.Status,
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

type CustomerResponse struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Gender         string    `json:"gender,omitempty"`
	Identification string    `json:"identification"`
	Address        string    `json:"address,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Status         bool      `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func NewCustomerResponse(cust *customer.Customer) CustomerResponse {
	if cust == nil {
		return CustomerResponse{}
	}

	updatedAt := cust.UpdatedAt
	if cust.AccountUpdatedAt.After(updatedAt) {
		updatedAt = cust.AccountUpdatedAt
	}

	return CustomerResponse{
		ID:             cust.ID,
		Name:           cust.Name,
		Gender:         cust.Gender,
		Identification: cust.Identification,
		Address:        cust.Address,
		Phone:          cust.Phone,
		Status:         cust.Active,
		CreatedAt:      cust.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func NewCustomerListResponse(customers []*customer.Customer) []CustomerResponse {
	resp := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		resp = append(resp, NewCustomerResponse(c))
	}
	return resp
}
