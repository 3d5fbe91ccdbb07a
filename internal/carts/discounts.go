package carts

import (
	"context"
	"time"

	"github.com/cartshare/cartshare-backend/internal/collab"
	"github.com/cartshare/cartshare-backend/internal/lifecycle"
	"github.com/cartshare/cartshare-backend/internal/pricing"
	"github.com/cartshare/cartshare-backend/pkg/domain"
)

// ApplyDiscount evaluates a code against the cart and applies it. The
// definition is fetched outside the critical section; evaluation and the
// usage-counter bump happen inside it, against authoritative cart state, so
// the amount can never be computed from a stale subtotal. Applying a new
// code replaces any previous one; usage counts are never refunded.
func (s *Service) ApplyDiscount(ctx context.Context, cartID, userID, code string) (*domain.Cart, error) {
	def, err := s.discounts.FindByCode(ctx, code)
	if err != nil {
		s.metrics.IncOperation("apply_discount", "error")
		return nil, err
	}

	updated, err := s.lifecycle.WithCart(ctx, cartID, lifecycle.Options{}, func(cart *domain.Cart, now time.Time) error {
		if err := collab.RequireMember(cart, userID); err != nil {
			return err
		}

		amount, err := pricing.Evaluate(def, cart, now)
		if err != nil {
			return err
		}
		if err := s.discounts.IncrementUses(ctx, def.ID); err != nil {
			return err
		}

		cart.Discount = &domain.AppliedDiscount{
			Code:        def.Code,
			Type:        def.Type,
			AmountCents: amount,
		}
		return nil
	})
	if err != nil {
		s.metrics.IncOperation("apply_discount", "rejected")
		return nil, err
	}

	s.metrics.IncOperation("apply_discount", "ok")
	return updated, nil
}

// RemoveDiscount clears the applied discount. Removing when none is applied
// is a no-op; the consumed use stays consumed.
func (s *Service) RemoveDiscount(ctx context.Context, cartID, userID string) (*domain.Cart, error) {
	updated, err := s.lifecycle.WithCart(ctx, cartID, lifecycle.Options{}, func(cart *domain.Cart, _ time.Time) error {
		if err := collab.RequireMember(cart, userID); err != nil {
			return err
		}
		cart.Discount = nil
		return nil
	})
	if err != nil {
		s.metrics.IncOperation("remove_discount", "error")
		return nil, err
	}
	s.metrics.IncOperation("remove_discount", "ok")
	return updated, nil
}
