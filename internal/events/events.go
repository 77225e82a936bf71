package events

import "context"

const TypePaymentCreated = "payment.created"

// PaymentCreated is published once per newly recorded payment.
type PaymentCreated struct {
	EventID    string `json:"event_id"`
	Type       string `json:"type"`
	ExternalID string `json:"external_id"`
	Email      string `json:"email"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	CreatedAt  string `json:"created_at"`
}

type Publisher interface {
	PublishPaymentCreated(ctx context.Context, event PaymentCreated) error
	Close() error
}

type noopPublisher struct{}

// NewNoopPublisher returns a Publisher that drops every event.
func NewNoopPublisher() Publisher { return noopPublisher{} }

func (noopPublisher) PublishPaymentCreated(context.Context, PaymentCreated) error { return nil }

func (noopPublisher) Close() error { return nil }
