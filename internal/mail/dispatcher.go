package mail

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"expensetracker/internal/amqp"
	applog "expensetracker/internal/log"
	"expensetracker/internal/metrics"
)

const sendTimeout = 30 * time.Second

// Publisher hands a message to the mail queue.
type Publisher interface {
	PublishEmail(ctx context.Context, msg *amqp.EmailMessage) error
}

// Dispatcher delivers email without blocking the caller. Failures are logged
// and never reported back.
type Dispatcher struct {
	publisher Publisher
	mailer    Mailer
	metrics   *metrics.Metrics
	logger    *slog.Logger
	wg        sync.WaitGroup
}

// NewDispatcher returns a dispatcher that queues through publisher when it is
// non-nil and otherwise sends with mailer from a goroutine.
func NewDispatcher(publisher Publisher, mailer Mailer, m *metrics.Metrics, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		publisher: publisher,
		mailer:    mailer,
		metrics:   m,
		logger:    logger.With(applog.FieldComponent, applog.ComponentMail),
	}
}

// Enqueue schedules delivery of a message and returns immediately.
func (d *Dispatcher) Enqueue(ctx context.Context, to, subject, body string) {
	msg := amqp.NewEmailMessage(to, subject, body)
	bg := context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(bg, sendTimeout)
		defer cancel()

		if d.publisher != nil {
			err := d.publisher.PublishEmail(ctx, msg)
			if err == nil {
				d.metrics.Email("queued")
				return
			}
			d.logger.WarnContext(ctx, "Failed to queue email, sending directly",
				applog.FieldMessageID, msg.ID, "error", err)
		}

		d.send(ctx, msg)
	}()
}

func (d *Dispatcher) send(ctx context.Context, msg *amqp.EmailMessage) {
	if d.mailer == nil {
		d.logger.ErrorContext(ctx, "No mailer configured, dropping email", applog.FieldMessageID, msg.ID)
		d.metrics.Email("failed")
		return
	}
	if err := d.mailer.Send(ctx, FromQueue(msg)); err != nil {
		d.logger.ErrorContext(ctx, "Failed to send email",
			applog.FieldMessageID, msg.ID, applog.FieldEmailTo, msg.To, "error", err)
		d.metrics.Email("failed")
		return
	}
	d.metrics.Email("sent")
}

// Wait blocks until every pending delivery finished or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FromQueue converts a queued message into a Message.
func FromQueue(msg *amqp.EmailMessage) Message {
	return Message{ID: msg.ID, To: msg.To, Subject: msg.Subject, Body: msg.Body}
}
