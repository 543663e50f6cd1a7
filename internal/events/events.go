package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"caravan/internal/utils"
)

// Topics published by the service.
const (
	TopicReservationCreated    = "reservation.created"
	TopicReservationCancelled  = "reservation.cancelled"
	TopicReservationReconciled = "reservation.reconciled"
	TopicPaymentRegistered     = "payment.registered"
	TopicPackagePayment        = "package.payment.registered"
)

// Event is the envelope written to every broker.
type Event struct {
	Topic      string          `json:"topic"`
	Key        string          `json:"key"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// New wraps payload into an Event.
func New(topic, key string, payload any) (Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Topic: topic, Key: key, OccurredAt: time.Now().UTC(), Payload: body}, nil
}

// Publisher delivers events to a broker. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// LogPublisher only logs events; it is used when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, e Event) error {
	utils.LogEvent("", "events", e.Topic, "key="+e.Key)
	return nil
}

func (LogPublisher) Close() error { return nil }

// Emit publishes an event after the surrounding transaction committed.
// Broker failures are logged and never fail the caller.
func Emit(ctx context.Context, p Publisher, requestID, topic, key string, payload any) {
	if p == nil {
		return
	}
	e, err := New(topic, key, payload)
	if err != nil {
		utils.LogError(requestID, "events", topic, err)
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		utils.LogError(requestID, "events", topic, err)
	}
}

// Options selects and configures the broker.
type Options struct {
	Driver       string
	AMQPURL      string
	KafkaBrokers []string
}

// NewPublisher builds the publisher named by opts.Driver ("amqp", "kafka", anything else logs only).
func NewPublisher(opts Options) (Publisher, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "amqp", "rabbitmq":
		return NewAMQPPublisher(opts.AMQPURL)
	case "kafka":
		return NewKafkaPublisher(opts.KafkaBrokers), nil
	default:
		return LogPublisher{}, nil
	}
}
