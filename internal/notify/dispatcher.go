package notify

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/suraksha-car-care/backend/internal/email"
	"github.com/suraksha-car-care/backend/internal/model"
)

type Kind string

const (
	KindAppointment Kind = "appointment"
	KindContact     Kind = "contact"
)

type Task struct {
	Kind        Kind
	Appointment *model.Appointment
	Contact     *model.Contact
}

type Config struct {
	AdminAddr string
	QueueSize int
	Workers   int
}

// Dispatcher sends admin and customer emails for saved records, decoupled
// from the HTTP handlers through a bounded task queue. Delivery is best
// effort: failures are logged and dropped, never retried, never surfaced to
// the request that queued the task.
type Dispatcher struct {
	sender    email.Sender
	adminAddr string
	logger    *slog.Logger
	queue     chan Task
	workers   int
	wg        sync.WaitGroup
}

func NewDispatcher(sender email.Sender, logger *slog.Logger, cfg Config) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	return &Dispatcher{
		sender:    sender,
		adminAddr: cfg.AdminAddr,
		logger:    logger,
		queue:     make(chan Task, cfg.QueueSize),
		workers:   cfg.Workers,
	}
}

// Run starts the workers and blocks until ctx is cancelled and in-flight
// sends have finished. Tasks still queued at shutdown are dropped.
func (d *Dispatcher) Run(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx)
	}
	d.wg.Wait()
}

// AppointmentBooked queues the admin summary and customer confirmation for a
// saved booking. It never blocks: when the queue is full the task is dropped
// with a log line.
func (d *Dispatcher) AppointmentBooked(appt *model.Appointment) {
	d.enqueue(Task{Kind: KindAppointment, Appointment: appt})
}

// ContactReceived queues the admin and acknowledgment emails for a saved
// contact message.
func (d *Dispatcher) ContactReceived(c *model.Contact) {
	d.enqueue(Task{Kind: KindContact, Contact: c})
}

func (d *Dispatcher) enqueue(task Task) {
	select {
	case d.queue <- task:
	default:
		d.logger.Warn("notification queue full; dropping task", "kind", task.Kind)
	}
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-d.queue:
			d.process(ctx, task)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, task Task) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("notification panic recovered", "kind", task.Kind, "panic", r)
		}
	}()

	_, span := otel.Tracer("notify").Start(ctx, "notify.dispatch",
		trace.WithAttributes(
			attribute.String("notify.kind", string(task.Kind)),
		),
	)
	defer span.End()

	var msgs []message
	switch task.Kind {
	case KindAppointment:
		if task.Appointment == nil {
			return
		}
		msgs = appointmentMessages(d.adminAddr, task.Appointment)
	case KindContact:
		if task.Contact == nil {
			return
		}
		msgs = contactMessages(d.adminAddr, task.Contact)
	default:
		d.logger.Warn("unknown notification kind", "kind", task.Kind)
		return
	}

	for _, m := range msgs {
		if m.to == "" {
			continue
		}
		if err := d.sender.Send(m.to, m.subject, m.body); err != nil {
			span.RecordError(err)
			d.logger.Error("notification send failed",
				"kind", task.Kind,
				"to", m.to,
				"err", err,
			)
		}
	}
}
