package domain

import (
	"time"

	"github.com/cartshare/cartshare-backend/pkg/enums"
)

// CartItem is a single priced line keyed by product id. Quantity is always
// at least 1; setting it to zero removes the line.
type CartItem struct {
	ProductID      string `json:"productId"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
}

// AppliedDiscount is the snapshot of a discount applied to a cart. AmountCents
// is the evaluated amount at application time.
type AppliedDiscount struct {
	Code        string             `json:"code"`
	Type        enums.DiscountType `json:"type"`
	AmountCents int64              `json:"amountCents"`
}

// CheckoutLock freezes a cart for the checkout window and optionally pins the
// exchange rate used for display.
type CheckoutLock struct {
	LockedAt     time.Time     `json:"lockedAt"`
	LockedUntil  time.Time     `json:"lockedUntil"`
	ExchangeRate *ExchangeRate `json:"lockedExchangeRate,omitempty"`
}

// Cart is the authoritative in-memory state for one collaborative cart.
// Subtotal and total are always derived from Items, never stored.
type Cart struct {
	ID            string              `json:"id"`
	OwnerID       string              `json:"ownerId"`
	Collaborators []string            `json:"collaborators"`
	Items         map[string]CartItem `json:"items"`
	Discount      *AppliedDiscount    `json:"discount,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
	ExpiresAt     time.Time           `json:"expiresAt"`
	CheckoutLock  *CheckoutLock       `json:"checkoutLock,omitempty"`
}

// SubtotalCents recomputes the subtotal from the current items.
func (c *Cart) SubtotalCents() int64 {
	var sum int64
	for _, item := range c.Items {
		sum += item.UnitPriceCents * int64(item.Quantity)
	}
	return sum
}

// DiscountCents returns the applied discount amount capped at the subtotal.
func (c *Cart) DiscountCents() int64 {
	if c.Discount == nil {
		return 0
	}
	subtotal := c.SubtotalCents()
	if c.Discount.AmountCents > subtotal {
		return subtotal
	}
	return c.Discount.AmountCents
}

// TotalCents is subtotal minus discount, floored at zero.
func (c *Cart) TotalCents() int64 {
	total := c.SubtotalCents() - c.DiscountCents()
	if total < 0 {
		return 0
	}
	return total
}

// IsExpired reports whether the cart has passed its expiry instant.
func (c *Cart) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// LockActive reports whether a checkout lock is present and unexpired. An
// expired lock is treated as already cancelled.
func (c *Cart) LockActive(now time.Time) bool {
	return c.CheckoutLock != nil && !now.After(c.CheckoutLock.LockedUntil)
}

// Status resolves the lifecycle state lazily from the clock.
func (c *Cart) Status(now time.Time) enums.CartStatus {
	switch {
	case c.LockActive(now):
		return enums.CartStatusCheckoutLocked
	case c.IsExpired(now):
		return enums.CartStatusExpired
	default:
		return enums.CartStatusActive
	}
}

// HasCollaborator reports whether the user id is in the collaborator set.
// The owner is never a member of the set.
func (c *Cart) HasCollaborator(userID string) bool {
	for _, id := range c.Collaborators {
		if id == userID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can mutate snapshots without aliasing
// the stored state.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	clone := *c

	clone.Collaborators = append([]string(nil), c.Collaborators...)

	clone.Items = make(map[string]CartItem, len(c.Items))
	for id, item := range c.Items {
		clone.Items[id] = item
	}

	if c.Discount != nil {
		discount := *c.Discount
		clone.Discount = &discount
	}
	if c.CheckoutLock != nil {
		lock := *c.CheckoutLock
		if c.CheckoutLock.ExchangeRate != nil {
			rate := *c.CheckoutLock.ExchangeRate
			lock.ExchangeRate = &rate
		}
		clone.CheckoutLock = &lock
	}
	return &clone
}
