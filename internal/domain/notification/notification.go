// Package notification defines the outbound message contract.
// Transport adapters live in infrastructure/notify.
package notification

import (
	"context"
	"fmt"
	"strings"

	"docflow/internal/core/id"
)

// Template names the message layout the transport renders.
type Template string

const (
	TemplateStatusChanged    Template = "status.changed"
	TemplateReminderUpcoming Template = "reminder.upcoming"
	TemplateReminderOverdue  Template = "reminder.overdue"
)

// Message is one notification addressed to a vendor.
type Message struct {
	ID           id.ID          `json:"id"`
	Template     Template       `json:"template"`
	To           string         `json:"to"`
	Subject      string         `json:"subject"`
	DocumentID   id.ID          `json:"documentId"`
	DocumentKind string         `json:"documentKind"`
	Data         map[string]any `json:"data,omitempty"`
}

// NewMessage creates a message with a fresh id.
func NewMessage(template Template, to string, documentKind string, documentID id.ID) Message {
	return Message{
		ID:           id.New(),
		Template:     template,
		To:           strings.TrimSpace(to),
		DocumentID:   documentID,
		DocumentKind: documentKind,
		Data:         make(map[string]any),
	}
}

// With adds a template variable.
func (m Message) With(key string, value any) Message {
	if m.Data == nil {
		m.Data = make(map[string]any)
	}
	m.Data[key] = value
	return m
}

// Validate checks the message can be delivered.
func (m Message) Validate() error {
	if m.To == "" {
		return fmt.Errorf("notification %s: recipient is empty", m.Template)
	}
	if m.Template == "" {
		return fmt.Errorf("notification to %s: template is empty", m.To)
	}
	return nil
}

// Sender delivers messages. Callers treat failures as non-fatal.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg Message) error

// Send implements Sender.
func (f SenderFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}
