package mail

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/smtp"
	"strings"
	"sync"
	"testing"
	"time"

	"expensetracker/internal/amqp"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []*amqp.EmailMessage
	err       error
}

func (p *recordingPublisher) PublishEmail(_ context.Context, msg *amqp.EmailMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, msg)
	return nil
}

func waitFor(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Wait(ctx); err != nil {
		t.Fatalf("dispatcher did not drain: %v", err)
	}
}

func TestDispatcherSendsDirectlyWithoutQueue(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(nil, mailer, nil, nil)

	d.Enqueue(context.Background(), "a@example.com", ActivationSubject, "body")
	waitFor(t, d)

	if mailer.count() != 1 {
		t.Fatalf("expected 1 sent email, got %d", mailer.count())
	}
	if mailer.sent[0].To != "a@example.com" || mailer.sent[0].ID == "" {
		t.Fatalf("unexpected message %+v", mailer.sent[0])
	}
}

func TestDispatcherPrefersQueue(t *testing.T) {
	mailer := &recordingMailer{}
	publisher := &recordingPublisher{}
	d := NewDispatcher(publisher, mailer, nil, nil)

	d.Enqueue(context.Background(), "a@example.com", ResetSubject, "body")
	waitFor(t, d)

	if len(publisher.published) != 1 || mailer.count() != 0 {
		t.Fatalf("expected queued only, got published=%d sent=%d", len(publisher.published), mailer.count())
	}
}

func TestDispatcherFallsBackWhenQueueFails(t *testing.T) {
	mailer := &recordingMailer{}
	publisher := &recordingPublisher{err: errors.New("broker down")}
	d := NewDispatcher(publisher, mailer, nil, nil)

	d.Enqueue(context.Background(), "a@example.com", ResetSubject, "body")
	waitFor(t, d)

	if mailer.count() != 1 {
		t.Fatalf("expected direct send after queue failure, got %d", mailer.count())
	}
}

func TestDispatcherSwallowsSendErrors(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	d := NewDispatcher(nil, &recordingMailer{err: errors.New("smtp down")}, nil, logger)

	ctx, cancel := context.WithCancel(context.Background())
	d.Enqueue(ctx, "a@example.com", ActivationSubject, "body")
	cancel() // request finished before the send
	waitFor(t, d)

	if !strings.Contains(logs.String(), "Failed to send email") {
		t.Fatalf("expected failure to be logged, got %q", logs.String())
	}
}

func TestSMTPMailerComposesMessage(t *testing.T) {
	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
	)
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p", From: "noreply@example.com"})
	m.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	err := m.Send(context.Background(), Message{ID: "id-1", To: "a@example.com", Subject: "Hi\r\nBcc: x@y", Body: "line1\nline2"})
	if err != nil {
		t.Fatal(err)
	}
	if gotAddr != "smtp.example.com:587" || len(gotTo) != 1 || gotTo[0] != "a@example.com" {
		t.Fatalf("unexpected envelope %s %v", gotAddr, gotTo)
	}
	for _, want := range []string{
		"From: noreply@example.com\r\n",
		"Subject: Hi  Bcc: x@y\r\n",
		"Message-ID: <id-1@example.com>\r\n",
		"\r\n\r\nline1\r\nline2",
	} {
		if !strings.Contains(gotMsg, want) {
			t.Fatalf("expected %q in message:\n%s", want, gotMsg)
		}
	}
}

func TestTemplates(t *testing.T) {
	link := Link("https://app.example.com/", "authentication", "activate", "MQ", "tok")
	if link != "https://app.example.com/authentication/activate/MQ/tok" {
		t.Fatalf("unexpected link %s", link)
	}
	if body := ActivationBody("alice", link); !strings.Contains(body, "Hi alice") || !strings.Contains(body, link) {
		t.Fatalf("unexpected activation body %q", body)
	}
	if body := ResetBody(link); !strings.Contains(body, link) {
		t.Fatalf("unexpected reset body %q", body)
	}
}
