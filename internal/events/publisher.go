package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/suraksha-car-care/backend/libs/kafkax"
)

// Domain event types. The Kafka topic name equals the event type (event per
// topic), matching the convention used across our services.
const (
	AppointmentCreated = "carcare.appointment.created.v1"
	AppointmentUpdated = "carcare.appointment.updated.v1"
	AppointmentDeleted = "carcare.appointment.deleted.v1"
	ContactCreated     = "carcare.contact.created.v1"
	ContactUpdated     = "carcare.contact.updated.v1"
	ContactDeleted     = "carcare.contact.deleted.v1"
)

// Publisher emits domain events for downstream consumers (analytics, CRM
// sync). Delivery is asynchronous and best effort; the HTTP path never waits
// on Kafka.
type Publisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewPublisher returns a disabled publisher when no brokers are configured;
// Publish is then a no-op.
func NewPublisher(brokers string, logger *slog.Logger) *Publisher {
	list := kafkax.SplitBrokers(brokers)
	if len(list) == 0 {
		logger.Warn("event publisher disabled (no kafka brokers configured)")
		return &Publisher{logger: logger}
	}
	writer := &kafka.Writer{
		Addr:     kafka.TCP(list...),
		Balancer: &kafka.Hash{},
		Async:    true,
		Completion: func(_ []kafka.Message, err error) {
			if err != nil {
				logger.Error("event publish failed", "err", err)
			}
		},
	}
	return &Publisher{writer: writer, logger: logger}
}

func (p *Publisher) Publish(ctx context.Context, eventType, aggregateID string, payload any) {
	if p == nil || p.writer == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("event payload marshal failed", "event_type", eventType, "err", err)
		return
	}
	msg := kafka.Message{
		Topic: eventType,
		Key:   []byte(aggregateID),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(uuid.NewString())},
			{Key: "event_type", Value: []byte(eventType)},
		},
	}
	msg.Headers = kafkax.InjectTraceHeaders(ctx, msg.Headers)
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("event publish failed", "event_type", eventType, "err", err)
	}
}

func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
