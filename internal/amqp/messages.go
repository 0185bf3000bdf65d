package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// EmailMessage is one outgoing email queued for the mail worker.
type EmailMessage struct {
	ID        string    `json:"id"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEmailMessage creates a message with a fresh id
func NewEmailMessage(to, subject, body string) *EmailMessage {
	return &EmailMessage{
		ID:        uuid.NewString(),
		To:        to,
		Subject:   subject,
		Body:      body,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *EmailMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EmailMessageFromJSON creates a message from JSON bytes
func EmailMessageFromJSON(data []byte) (*EmailMessage, error) {
	var msg EmailMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.To == "" {
		return nil, errors.New("email message without recipient")
	}
	return &msg, nil
}
