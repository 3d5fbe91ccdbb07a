package domain

import (
	"time"

	"github.com/cartshare/cartshare-backend/pkg/enums"
)

// StockIssue describes one line's shortfall against current availability.
type StockIssue struct {
	ProductID string               `json:"productId"`
	Issue     enums.StockIssueKind `json:"issue"`
	Requested int                  `json:"requested"`
	Available int                  `json:"available"`
}

// CartValidation is the result of re-checking every line against inventory.
type CartValidation struct {
	Valid  bool         `json:"valid"`
	Issues []StockIssue `json:"issues"`
}

// CheckoutIssue describes one blocker found during checkout validation.
type CheckoutIssue struct {
	ProductID         string                  `json:"productId"`
	Issue             enums.CheckoutIssueKind `json:"issue"`
	Requested         int                     `json:"requested,omitempty"`
	Available         int                     `json:"available,omitempty"`
	PriceCents        int64                   `json:"priceCents,omitempty"`
	CurrentPriceCents int64                   `json:"currentPriceCents,omitempty"`
}

// CheckoutValidation is the initiate-checkout response: either a list of
// blockers, or the acquired lock details.
type CheckoutValidation struct {
	Valid        bool            `json:"valid"`
	Errors       []CheckoutIssue `json:"errors,omitempty"`
	LockedUntil  *time.Time      `json:"lockedUntil,omitempty"`
	ExchangeRate *ExchangeRate   `json:"exchangeRate,omitempty"`
}

// RestoreIssue reports a saved line skipped during restore because the
// product is gone.
type RestoreIssue struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Reason    string `json:"reason"`
}

// CurrencyView carries converted display amounts for one cart read. Stored
// prices stay in USD; this is presentation only.
type CurrencyView struct {
	Currency       string           `json:"currency"`
	Rate           ExchangeRate     `json:"rate"`
	SubtotalCents  int64            `json:"subtotalCents"`
	DiscountCents  int64            `json:"discountCents"`
	TotalCents     int64            `json:"totalCents"`
	UnitPriceCents map[string]int64 `json:"unitPriceCents"`
}
