package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Currency string

const (
	CurrencyPEN Currency = "PEN"
	CurrencyUSD Currency = "USD"
)

// minorUnits maps each accepted currency to its number of fractional digits.
var minorUnits = map[Currency]int32{
	CurrencyPEN: 2,
	CurrencyUSD: 2,
}

// Supported reports whether c is an accepted currency code. Matching is case-sensitive.
func (c Currency) Supported() bool {
	_, ok := minorUnits[c]
	return ok
}

// MinorUnits returns the fractional digits used when rendering amounts in c.
func (c Currency) MinorUnits() int32 {
	if units, ok := minorUnits[c]; ok {
		return units
	}
	return 2
}

type Payment struct {
	ID         int64           `gorm:"primaryKey;autoIncrement"`
	ExternalID string          `gorm:"column:external_id;type:varchar(100);not null;uniqueIndex:ux_payments_external_id"`
	Email      string          `gorm:"type:varchar(100);not null;index:ix_payments_email"`
	Amount     decimal.Decimal `gorm:"type:numeric(19,2);not null"`
	Currency   Currency        `gorm:"type:varchar(3);not null"`
	CreatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Payment) TableName() string { return "payments" }
