package event

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	published []amqp.Publishing
	keys      []string
	exchange  string
	err       error
	closed    bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.exchange = exchange
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestPublishPaymentRecorded(t *testing.T) {
	ch := &fakeChannel{}
	pub := newPublisher(func() (amqpChannel, error) { return ch, nil }, "agv-finance", testLogger)

	ev := PaymentRecordedEvent{
		Timestamp:     time.Now(),
		PaymentID:     uuid.New(),
		PaymentNumber: "PAY000001",
		LoanNumber:    "LOAN000001",
		Amount:        "1500.00",
	}
	require.NoError(t, pub.PublishPaymentRecorded(context.Background(), ev))

	require.Len(t, ch.published, 1)
	assert.Equal(t, "agv-finance", ch.exchange)
	assert.Equal(t, []string{RoutingKeyPaymentRecorded}, ch.keys)
	assert.Equal(t, "application/json", ch.published[0].ContentType)
	assert.Equal(t, amqp.Persistent, ch.published[0].DeliveryMode)
	assert.True(t, ch.closed)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(ch.published[0].Body, &decoded))
	assert.Equal(t, "PAY000001", decoded["paymentNumber"])
	assert.Equal(t, "1500.00", decoded["amount"])
}

func TestPublishRoutesEachEventType(t *testing.T) {
	ch := &fakeChannel{}
	pub := newPublisher(func() (amqpChannel, error) { return ch, nil }, "x", testLogger)
	ctx := context.Background()

	require.NoError(t, pub.PublishCustomerCreated(ctx, CustomerCreatedEvent{}))
	require.NoError(t, pub.PublishCustomerUpdated(ctx, CustomerUpdatedEvent{}))
	require.NoError(t, pub.PublishLoanCreated(ctx, LoanCreatedEvent{}))
	require.NoError(t, pub.PublishLoanStatusChanged(ctx, LoanStatusChangedEvent{}))

	assert.Equal(t, []string{
		RoutingKeyCustomerCreated,
		RoutingKeyCustomerUpdated,
		RoutingKeyLoanCreated,
		RoutingKeyLoanStatusChanged,
	}, ch.keys)
}

func TestPublishErrors(t *testing.T) {
	t.Run("channel cannot be opened", func(t *testing.T) {
		pub := newPublisher(func() (amqpChannel, error) { return nil, errors.New("connection closed") }, "x", testLogger)
		err := pub.PublishLoanCreated(context.Background(), LoanCreatedEvent{})
		assert.ErrorContains(t, err, "failed to open channel")
	})

	t.Run("broker rejects publish", func(t *testing.T) {
		ch := &fakeChannel{err: errors.New("channel closed")}
		pub := newPublisher(func() (amqpChannel, error) { return ch, nil }, "x", testLogger)
		err := pub.PublishLoanCreated(context.Background(), LoanCreatedEvent{})
		assert.ErrorContains(t, err, "failed to publish message")
		assert.True(t, ch.closed)
	})
}

func TestNewRabbitMQEventPublisherValidatesArguments(t *testing.T) {
	_, err := NewRabbitMQEventPublisher(nil, "x", testLogger)
	assert.EqualError(t, err, "RabbitMQ connection cannot be nil")
}

func TestNoopPublisher(t *testing.T) {
	pub := NewNoopPublisher(testLogger)
	ctx := context.Background()
	assert.NoError(t, pub.PublishCustomerCreated(ctx, CustomerCreatedEvent{}))
	assert.NoError(t, pub.PublishPaymentRecorded(ctx, PaymentRecordedEvent{}))
}
