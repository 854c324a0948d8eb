// Package kafka publishes domain events to a Kafka topic for downstream
// consumers (analytics, notifications). Publishing is best-effort: a broker
// outage is logged and never fails the originating operation.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/fieldsure/fieldsure/internal/domain"
)

// Publisher implements domain.EventSink on top of a Kafka writer.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured event topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes and writes one event. Errors are logged, not returned;
// the EventSink contract forbids failing the caller.
func (p *Publisher) Publish(ctx context.Context, e domain.Event) {
	msg, err := serializeToMessage(e)
	if err != nil {
		p.logger.ErrorContext(ctx, "event serialization failed",
			slog.String("kind", e.EventKind()),
			slog.Any("error", err),
		)
		return
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.ErrorContext(ctx, "event publish failed",
			slog.String("kind", e.EventKind()),
			slog.String("key", e.EventKey()),
			slog.Any("error", err),
		)
	}
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an event into a Kafka message keyed by the
// entity ID, with the event kind and emission time in headers.
func serializeToMessage(e domain.Event) (kafkago.Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize %s event: %w", e.EventKind(), err)
	}
	return kafkago.Message{
		Key:   []byte(e.EventKey()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_kind", Value: []byte(e.EventKind())},
			{Key: "emitted_at", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		},
	}, nil
}
