package event

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

type mockChannel struct {
	mock.Mock
}

func (m *mockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(ctx, exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func (m *mockChannel) Close() error {
	return m.Called().Error(0)
}

func TestRabbitMQEventPublisher_PublishCustomerCreated(t *testing.T) {
	ch := new(mockChannel)
	publisher := newPublisher(func() (amqpChannel, error) { return ch, nil }, "customer-service", logger)

	created := CustomerCreatedEvent{
		Timestamp: time.Now(),
		Payload:   CustomerEventPayload{CustomerID: 7, Name: "Maria Lopez", Identification: "2222222222", Active: true},
	}

	ch.On("PublishWithContext", mock.Anything, "customer-service", routingKeyCustomerCreated, false, false,
		mock.MatchedBy(func(msg amqp.Publishing) bool {
			var decoded CustomerCreatedEvent
			if err := json.Unmarshal(msg.Body, &decoded); err != nil {
				return false
			}
			return msg.ContentType == "application/json" &&
				msg.AppId == publisherAppID &&
				decoded.Payload.CustomerID == 7
		})).Return(nil).Once()
	ch.On("Close").Return(nil).Once()

	err := publisher.PublishCustomerCreated(context.Background(), created)

	require.NoError(t, err)
	ch.AssertExpectations(t)
}

func TestRabbitMQEventPublisher_RoutingKeys(t *testing.T) {
	ch := new(mockChannel)
	publisher := newPublisher(func() (amqpChannel, error) { return ch, nil }, "customer-service", logger)

	ch.On("PublishWithContext", mock.Anything, "customer-service", routingKeyCustomerUpdated, false, false, mock.Anything).Return(nil).Once()
	ch.On("PublishWithContext", mock.Anything, "customer-service", routingKeyCustomerDeleted, false, false, mock.Anything).Return(nil).Once()
	ch.On("Close").Return(nil).Twice()

	require.NoError(t, publisher.PublishCustomerUpdated(context.Background(), CustomerUpdatedEvent{Reason: ReasonDeactivated}))
	require.NoError(t, publisher.PublishCustomerDeleted(context.Background(), CustomerDeletedEvent{CustomerID: 7}))
	ch.AssertExpectations(t)
}

func TestRabbitMQEventPublisher_Errors(t *testing.T) {
	t.Run("channel cannot be opened", func(t *testing.T) {
		publisher := newPublisher(func() (amqpChannel, error) { return nil, errors.New("connection closed") }, "customer-service", logger)

		err := publisher.PublishCustomerDeleted(context.Background(), CustomerDeletedEvent{CustomerID: 1})

		assert.ErrorContains(t, err, "failed to open channel")
	})

	t.Run("broker rejects publish", func(t *testing.T) {
		ch := new(mockChannel)
		publisher := newPublisher(func() (amqpChannel, error) { return ch, nil }, "customer-service", logger)
		ch.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything, false, false, mock.Anything).Return(errors.New("channel closed")).Once()
		ch.On("Close").Return(nil).Once()

		err := publisher.PublishCustomerCreated(context.Background(), CustomerCreatedEvent{})

		assert.ErrorContains(t, err, "failed to publish message")
		ch.AssertExpectations(t)
	})
}

func TestNewRabbitMQEventPublisher_Validation(t *testing.T) {
	_, err := NewRabbitMQEventPublisher(nil, "customer-service", logger)
	assert.Error(t, err)
}
