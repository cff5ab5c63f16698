package handlers

import (
	"context"

	"github.com/suraksha-car-care/backend/internal/model"
)

// Notifier queues post-response notification work. Implementations must not
// block; the response has already been written when these are called.
type Notifier interface {
	AppointmentBooked(appt *model.Appointment)
	ContactReceived(c *model.Contact)
}

// EventPublisher emits best-effort domain events for downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, aggregateID string, payload any)
}
