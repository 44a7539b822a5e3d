// Package events publishes a record of every handled submission so other
// systems (CRM sync, analytics) can follow bookings without scraping the
// business inbox. Events never carry submitter contact details.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/bristoevents/eventmail/internal/config"
	"github.com/bristoevents/eventmail/internal/logger"
	"github.com/bristoevents/eventmail/internal/metrics"
)

// Outcomes recorded on a SubmissionEvent
const (
	OutcomeDelivered        = "delivered"
	OutcomePartial          = "partial_delivery"
	OutcomeTransportFailure = "transport_failure"
)

// SubmissionEvent describes one handled submission
type SubmissionEvent struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	BookingID  string    `json:"booking_id,omitempty"`
	Outcome    string    `json:"outcome"`
	Delivered  []string  `json:"delivered"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewSubmissionEvent stamps an event with a fresh id and the current time
func NewSubmissionEvent(kind, bookingID, outcome string, delivered []string) SubmissionEvent {
	if delivered == nil {
		delivered = []string{}
	}
	return SubmissionEvent{
		ID:         uuid.NewString(),
		Kind:       kind,
		BookingID:  bookingID,
		Outcome:    outcome,
		Delivered:  delivered,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher publishes submission events
type Publisher interface {
	Publish(ctx context.Context, evt SubmissionEvent) error
	Close() error
}

// Nop discards every event
type Nop struct{}

func (Nop) Publish(context.Context, SubmissionEvent) error { return nil }
func (Nop) Close() error                                   { return nil }

// ErrPublisherClosed is returned by Publish after Close
var ErrPublisherClosed = errors.New("events: publisher is closed")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a Kafka topic, keyed by event id
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	log    *logger.Logger

	mu     sync.RWMutex
	closed bool
}

// NewKafkaPublisher creates a publisher for cfg.Topic on cfg.Brokers
func NewKafkaPublisher(cfg config.EventsConfig, log *logger.Logger) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("events: at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("events: topic cannot be empty")
	}

	var requiredAcks kafka.RequiredAcks
	switch cfg.RequireAcks {
	case 0:
		requiredAcks = kafka.RequireNone
	case 1:
		requiredAcks = kafka.RequireOne
	default:
		requiredAcks = kafka.RequireAll
	}

	// Async keeps broker round trips off the request path. Delivery
	// failures surface in the completion callback instead of Publish.
	l := log.WithComponent("events")
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: requiredAcks,
		BatchTimeout: cfg.BatchTimeout,
		MaxAttempts:  3,
		Async:        true,
		Completion:   completionHandler(cfg.Topic, l),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			l.Error().Msgf(msg, args...)
		}),
	}

	return newKafkaPublisher(writer, cfg.Topic, l), nil
}

// completionHandler counts and logs batches the async writer gave up on
func completionHandler(topic string, log *logger.Logger) func([]kafka.Message, error) {
	return func(msgs []kafka.Message, err error) {
		if err == nil {
			return
		}
		metrics.EventsPublishFailed.Add(float64(len(msgs)))
		for _, msg := range msgs {
			log.Warn().Err(err).
				Str("topic", topic).
				Str("event_id", string(msg.Key)).
				Msg("failed to deliver submission event")
		}
	}
}

func newKafkaPublisher(w messageWriter, topic string, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, topic: topic, log: log}
}

// Publish hands evt to the writer. With the async writer built by
// NewKafkaPublisher it returns once the message is queued.
func (p *KafkaPublisher) Publish(ctx context.Context, evt SubmissionEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("events: failed to encode event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(evt.ID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(evt.Kind)},
			{Key: "outcome", Value: []byte(evt.Outcome)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("events: failed to publish to %s: %w", p.topic, err)
	}
	return nil
}

// Close flushes and closes the underlying writer
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}

// NewFromConfig returns a Kafka publisher when events are enabled and Nop otherwise
func NewFromConfig(cfg config.EventsConfig, log *logger.Logger) (Publisher, error) {
	if !cfg.Enabled {
		return Nop{}, nil
	}
	return NewKafkaPublisher(cfg, log)
}
