package currency

import (
	"context"
	"strings"
	"time"

	"github.com/cartshare/cartshare-backend/pkg/domain"
	pkgerrors "github.com/cartshare/cartshare-backend/pkg/errors"
	"github.com/cartshare/cartshare-backend/pkg/upstream/rates"
)

// BaseCurrency is the unit all cart prices are stored in.
const BaseCurrency = "USD"

// Converter produces display-only currency views. Stored amounts never
// leave USD; each view is derived per read.
type Converter struct {
	client rates.Client
}

// NewConverter builds a converter over the exchange-rate collaborator.
func NewConverter(client rates.Client) *Converter {
	return &Converter{client: client}
}

// Normalize upper-cases a currency code and rejects empty input.
func Normalize(code string) (string, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(code))
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "currency code is required")
	}
	return trimmed, nil
}

// Rate fetches a fresh USD→target quote.
func (c *Converter) Rate(ctx context.Context, target string) (*domain.ExchangeRate, error) {
	target, err := Normalize(target)
	if err != nil {
		return nil, err
	}
	quote, err := c.client.GetRate(ctx, BaseCurrency, target)
	if err != nil {
		return nil, err
	}
	return &domain.ExchangeRate{
		From:      quote.From,
		To:        quote.To,
		Rate:      quote.Rate,
		Timestamp: quote.Timestamp,
	}, nil
}

// View converts a cart's amounts into the target currency. A checkout lock
// that pinned a rate for the same currency wins over a fresh quote, so the
// shopper sees stable prices for the whole checkout window.
func (c *Converter) View(ctx context.Context, cart *domain.Cart, target string, now time.Time) (*domain.CurrencyView, error) {
	target, err := Normalize(target)
	if err != nil {
		return nil, err
	}

	var rate *domain.ExchangeRate
	if cart.LockActive(now) && cart.CheckoutLock.ExchangeRate != nil && cart.CheckoutLock.ExchangeRate.To == target {
		pinned := *cart.CheckoutLock.ExchangeRate
		rate = &pinned
	} else {
		rate, err = c.Rate(ctx, target)
		if err != nil {
			return nil, err
		}
	}

	unitPrices := make(map[string]int64, len(cart.Items))
	for productID, item := range cart.Items {
		unitPrices[productID] = rate.Convert(item.UnitPriceCents)
	}

	return &domain.CurrencyView{
		Currency:       target,
		Rate:           *rate,
		SubtotalCents:  rate.Convert(cart.SubtotalCents()),
		DiscountCents:  rate.Convert(cart.DiscountCents()),
		TotalCents:     rate.Convert(cart.TotalCents()),
		UnitPriceCents: unitPrices,
	}, nil
}

// SupportedCurrencies lists codes the collaborator can quote.
func (c *Converter) SupportedCurrencies(ctx context.Context) ([]string, error) {
	return c.client.GetSupportedCurrencies(ctx)
}
