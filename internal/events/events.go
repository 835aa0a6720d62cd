// Package events publishes trip lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event types.
const (
	TypeTripExported = "trip.exported"
	TypeTripImported = "trip.imported"
)

// TripEvent describes an export or import of one or more trips.
type TripEvent struct {
	Type      string    `json:"event_type"`
	OwnerID   string    `json:"owner_id"`
	TripIDs   []string  `json:"trip_ids"`
	Success   bool      `json:"success"`
	Records   int       `json:"records"`
	Errors    int       `json:"errors,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher emits trip events. Publishing is best effort: callers log the
// error and carry on.
type Publisher interface {
	Publish(ctx context.Context, e TripEvent) error
	Close() error
}

// NopPublisher is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, TripEvent) error { return nil }
func (NopPublisher) Close() error                             { return nil }

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events as JSON messages keyed by owner, so all events
// of one user land on the same partition in order.
type KafkaPublisher struct {
	writer messageWriter
	logger *slog.Logger
}

// ProducerConfig holds the Kafka producer settings.
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
}

// NewKafkaPublisher creates a publisher writing to cfg.Topic.
func NewKafkaPublisher(cfg ProducerConfig, logger *slog.Logger) *KafkaPublisher {
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 50 * time.Millisecond
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisher(w, logger)
}

func newKafkaPublisher(w messageWriter, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, logger: logger}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e TripEvent) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("events.KafkaPublisher.Publish: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(e.OwnerID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("events.KafkaPublisher.Publish: %w", err)
	}

	p.logger.DebugContext(ctx, "published trip event", "event_type", e.Type, "trips", len(e.TripIDs))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
