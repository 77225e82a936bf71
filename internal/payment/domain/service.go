package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type CreatePaymentRequest struct {
	ExternalID string `json:"external_id" validate:"notblank,max=100"`
	Email      string `json:"email" validate:"notblank,max=100"`
	Amount     string `json:"amount" validate:"notblank,decimal_format,decimal_positive,decimal_precision,decimal_range"`
	Currency   string `json:"currency" validate:"notblank,currency"`
}

type PaymentView struct {
	ExternalID string          `json:"external_id"`
	Email      string          `json:"email"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   Currency        `json:"currency"`
	CreatedAt  string          `json:"created_at"`
}

// MarshalJSON renders amount as a JSON number with the currency's minor units.
func (v PaymentView) MarshalJSON() ([]byte, error) {
	type view PaymentView
	return json.Marshal(struct {
		view
		Amount json.Number `json:"amount"`
	}{
		view:   view(v),
		Amount: json.Number(v.Amount.StringFixed(v.Currency.MinorUnits())),
	})
}

func NewPaymentView(p *Payment) PaymentView {
	return PaymentView{
		ExternalID: p.ExternalID,
		Email:      p.Email,
		Amount:     p.Amount,
		Currency:   p.Currency,
		CreatedAt:  p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type Service interface {
	Create(context.Context, CreatePaymentRequest) (PaymentView, error)
	GetByExternalID(context.Context, string) (PaymentView, error)
	ListByEmail(context.Context, string) ([]PaymentView, error)
}
