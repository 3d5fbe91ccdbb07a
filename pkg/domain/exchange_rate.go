package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is a USD→target rate as returned by the exchange-rate
// collaborator, retained at 4-decimal precision.
type ExchangeRate struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	Rate      decimal.Decimal `json:"rate"`
	Timestamp time.Time       `json:"timestamp"`
}

// Convert applies the rate to a USD minor-unit amount, rounding half up to
// the nearest whole minor unit of the target currency.
func (r ExchangeRate) Convert(amountCents int64) int64 {
	return decimal.NewFromInt(amountCents).Mul(r.Rate).Round(0).IntPart()
}
