package event

import (
	"context"
	"time"
)

type EventPublisher interface {
	PublishCustomerCreated(ctx context.Context, event CustomerCreatedEvent) error
	PublishCustomerUpdated(ctx context.Context, event CustomerUpdatedEvent) error
	PublishCustomerDeleted(ctx context.Context, event CustomerDeletedEvent) error
}

// CustomerEventPayload is the outward view of a customer. It never carries the credential.
type CustomerEventPayload struct {
	CustomerID     int64     `json:"customerId"`
	Name           string    `json:"name"`
	Identification string    `json:"identification"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type CustomerCreatedEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

const (
	ReasonUpdated     = "updated"
	ReasonDeactivated = "deactivated"
	ReasonReactivated = "reactivated"
)

type CustomerUpdatedEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Reason    string               `json:"reason"`
	Payload   CustomerEventPayload `json:"payload"`
}

type CustomerDeletedEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	CustomerID int64     `json:"customerId"`
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

var _ EventPublisher = NoopPublisher{}

func (NoopPublisher) PublishCustomerCreated(context.Context, CustomerCreatedEvent) error { return nil }

func (NoopPublisher) PublishCustomerUpdated(context.Context, CustomerUpdatedEvent) error { return nil }

func (NoopPublisher) PublishCustomerDeleted(context.Context, CustomerDeletedEvent) error { return nil }
