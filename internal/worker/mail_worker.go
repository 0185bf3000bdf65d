package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"expensetracker/internal/amqp"
	applog "expensetracker/internal/log"
	"expensetracker/internal/mail"
	"expensetracker/internal/metrics"
)

// defaultStaleAfter drops queued emails whose links have most likely expired.
const defaultStaleAfter = 24 * time.Hour

// MailWorker delivers emails consumed from the mail queue
type MailWorker struct {
	mailer     mail.Mailer
	metrics    *metrics.Metrics
	staleAfter time.Duration
	now        func() time.Time
}

func NewMailWorker(mailer mail.Mailer, m *metrics.Metrics, staleAfter time.Duration) *MailWorker {
	if staleAfter <= 0 {
		staleAfter = defaultStaleAfter
	}
	return &MailWorker{
		mailer:     mailer,
		metrics:    m,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// HandleEmailMessage sends a single queued email. A returned error makes the
// consumer nack the delivery.
func (w *MailWorker) HandleEmailMessage(ctx context.Context, msg *amqp.EmailMessage) error {
	slog.InfoContext(ctx, "Processing email message",
		applog.FieldMessageID, msg.ID,
		"queued_at", msg.Timestamp)

	if !msg.Timestamp.IsZero() && w.now().Sub(msg.Timestamp) > w.staleAfter {
		slog.WarnContext(ctx, "Dropping stale email message",
			applog.FieldMessageID, msg.ID,
			"age", w.now().Sub(msg.Timestamp))
		w.metrics.Email("dropped")
		return nil
	}

	if err := w.mailer.Send(ctx, mail.FromQueue(msg)); err != nil {
		w.metrics.Email("failed")
		return fmt.Errorf("send email %s: %w", msg.ID, err)
	}

	w.metrics.Email("sent")
	slog.InfoContext(ctx, "Email sent", applog.FieldMessageID, msg.ID)
	return nil
}
