package notification

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// Kind identifies the customer-facing event a notification reports.
type Kind string

const (
	OrderConfirmed   Kind = "order_confirmed"
	PaymentConfirmed Kind = "payment_confirmed"
	Shipped          Kind = "shipped"
	Delivered        Kind = "delivered"
	PaymentReminder  Kind = "payment_reminder"
)

func (k Kind) Validate() error {
	switch k {
	case OrderConfirmed, PaymentConfirmed, Shipped, Delivered, PaymentReminder:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("notification kind is invalid", fmt.Errorf("%q is unknown", k))
	}
}

var ErrMessageIsNotConstructed = errors.New("Message must be created via NewMessage constructor")

// Message is an outbox entry: a notification recorded in the same transaction
// as the state change that caused it and published later by the relay.
type Message struct {
	id          kernel.UUID
	kind        Kind
	orderID     kernel.UUID
	orderNumber string
	payload     map[string]any
	createdAt   time.Time

	attempts    int
	lastError   string
	publishedAt *time.Time

	isConstructed bool
}

// NewMessage builds a pending outbox entry. Payload carries the order context
// handed to the notification sink; formatting is the sink's concern.
func NewMessage(id kernel.UUID, kind Kind, orderID kernel.UUID, orderNumber string, payload map[string]any, createdAt time.Time) (*Message, error) {
	if err := errors.Join(id.Validate(), kind.Validate(), orderID.Validate()); err != nil {
		return nil, err
	}
	if orderNumber == "" {
		return nil, errs.NewValueIsRequiredError("order number")
	}
	if createdAt.IsZero() {
		return nil, errs.NewValueIsRequiredError("created at")
	}
	if payload == nil {
		payload = map[string]any{}
	}

	return &Message{
		id:            id,
		kind:          kind,
		orderID:       orderID,
		orderNumber:   orderNumber,
		payload:       payload,
		createdAt:     createdAt.UTC(),
		isConstructed: true,
	}, nil
}

// RestoreParams carries a persisted outbox row back into a Message.
type RestoreParams struct {
	ID          kernel.UUID
	Kind        Kind
	OrderID     kernel.UUID
	OrderNumber string
	Payload     map[string]any
	CreatedAt   time.Time
	Attempts    int
	LastError   string
	PublishedAt *time.Time
}

func RestoreMessage(p RestoreParams) (*Message, error) {
	m, err := NewMessage(p.ID, p.Kind, p.OrderID, p.OrderNumber, p.Payload, p.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.attempts = p.Attempts
	m.lastError = p.LastError
	m.publishedAt = p.PublishedAt
	return m, nil
}

func (m *Message) Validate() error {
	if m == nil || !m.isConstructed {
		return ErrMessageIsNotConstructed
	}
	return nil
}

func (m *Message) ID() kernel.UUID {
	return m.id
}

func (m *Message) Kind() Kind {
	return m.kind
}

func (m *Message) OrderID() kernel.UUID {
	return m.orderID
}

func (m *Message) OrderNumber() string {
	return m.orderNumber
}

func (m *Message) Payload() map[string]any {
	return m.payload
}

func (m *Message) CreatedAt() time.Time {
	return m.createdAt
}

func (m *Message) Attempts() int {
	return m.attempts
}

func (m *Message) LastError() string {
	return m.lastError
}

func (m *Message) PublishedAt() *time.Time {
	return m.publishedAt
}

func (m *Message) IsPublished() bool {
	return m.publishedAt != nil
}

// MarkPublished records a successful hand-off to the sink.
func (m *Message) MarkPublished(at time.Time) {
	if m.publishedAt != nil {
		return
	}
	at = at.UTC()
	m.publishedAt = &at
}

// MarkFailed counts a failed publish attempt.
func (m *Message) MarkFailed(cause error) {
	m.attempts++
	if cause != nil {
		m.lastError = cause.Error()
	}
}
