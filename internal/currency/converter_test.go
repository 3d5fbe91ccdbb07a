package currency

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cartshare/cartshare-backend/pkg/domain"
	"github.com/cartshare/cartshare-backend/pkg/upstream/rates"
)

func testCart(now time.Time) *domain.Cart {
	return &domain.Cart{
		ID:      "cart_1",
		OwnerID: "user_a",
		Items: map[string]domain.CartItem{
			"prod_001": {ProductID: "prod_001", Name: "Wireless Headphones", UnitPriceCents: 2999, Quantity: 2},
		},
		ExpiresAt: now.Add(24 * time.Hour),
	}
}

func TestViewConvertsWithFreshRate(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	converter := NewConverter(rates.NewStub())

	view, err := converter.View(context.Background(), testCart(now), "eur", now)
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if view.Currency != "EUR" {
		t.Fatalf("expected normalized EUR, got %s", view.Currency)
	}
	// 5998 * 0.9150 = 5488.17 → 5488 half up.
	if view.SubtotalCents != 5488 {
		t.Fatalf("expected subtotal 5488, got %d", view.SubtotalCents)
	}
	// 2999 * 0.9150 = 2744.085 → 2744.
	if view.UnitPriceCents["prod_001"] != 2744 {
		t.Fatalf("expected unit price 2744, got %d", view.UnitPriceCents["prod_001"])
	}
	if view.TotalCents != view.SubtotalCents {
		t.Fatalf("no discount applied, total %d must equal subtotal %d", view.TotalCents, view.SubtotalCents)
	}
}

func TestViewPrefersLockedRate(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	cart := testCart(now)
	pinned := domain.ExchangeRate{
		From:      "USD",
		To:        "EUR",
		Rate:      decimal.RequireFromString("0.5000"),
		Timestamp: now,
	}
	cart.CheckoutLock = &domain.CheckoutLock{
		LockedAt:     now,
		LockedUntil:  now.Add(5 * time.Minute),
		ExchangeRate: &pinned,
	}

	converter := NewConverter(rates.NewStub())
	view, err := converter.View(context.Background(), cart, "EUR", now)
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if view.SubtotalCents != 2999 {
		t.Fatalf("expected pinned rate 0.5 to apply, got subtotal %d", view.SubtotalCents)
	}

	// A different currency still gets a fresh quote.
	other, err := converter.View(context.Background(), cart, "GBP", now)
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if other.SubtotalCents == 2999 {
		t.Fatal("pinned EUR rate must not leak into GBP view")
	}

	// Once the lock window lapses, fresh quotes win again.
	later := now.Add(10 * time.Minute)
	fresh, err := converter.View(context.Background(), cart, "EUR", later)
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if fresh.SubtotalCents != 5488 {
		t.Fatalf("expected fresh rate after lock expiry, got %d", fresh.SubtotalCents)
	}
}

func TestViewRejectsUnknownCurrency(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	converter := NewConverter(rates.NewStub())

	if _, err := converter.View(context.Background(), testCart(now), "XXX", now); err == nil {
		t.Fatal("expected unsupported currency to fail")
	}
	if _, err := converter.View(context.Background(), testCart(now), "  ", now); err == nil {
		t.Fatal("expected blank currency to fail")
	}
}
