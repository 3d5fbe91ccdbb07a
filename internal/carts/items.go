package carts

import (
	"context"
	"fmt"
	"time"

	"github.com/cartshare/cartshare-backend/internal/collab"
	"github.com/cartshare/cartshare-backend/internal/lifecycle"
	"github.com/cartshare/cartshare-backend/pkg/domain"
	pkgerrors "github.com/cartshare/cartshare-backend/pkg/errors"
)

// AddItem puts qty units of a product into the cart. Stock is reserved for
// the delta before the critical section; if the cart turns out to be locked,
// expired, or deleted once the lock is held, the reservation is rolled back.
func (s *Service) AddItem(ctx context.Context, cartID, userID, productID string, qty int) (*domain.Cart, error) {
	cart, err := s.lifecycle.Read(cartID)
	if err != nil {
		s.metrics.IncOperation("add_item", "error")
		return nil, err
	}
	if err := collab.RequireMember(cart, userID); err != nil {
		s.metrics.IncOperation("add_item", "forbidden")
		return nil, err
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		s.metrics.IncOperation("add_item", "error")
		return nil, err
	}
	if product == nil {
		s.metrics.IncOperation("add_item", "error")
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", productID))
	}

	if err := s.stock.Reserve(ctx, productID, qty); err != nil {
		s.metrics.IncOperation("add_item", "stock")
		return nil, err
	}

	updated, err := s.lifecycle.WithCart(ctx, cartID, lifecycle.Options{}, func(cart *domain.Cart, _ time.Time) error {
		if err := collab.RequireMember(cart, userID); err != nil {
			return err
		}
		line, exists := cart.Items[productID]
		if exists {
			// Keep the price snapshot taken when the line was first added.
			line.Quantity += qty
		} else {
			line = domain.CartItem{
				ProductID:      productID,
				Name:           product.Name,
				UnitPriceCents: product.PriceCents,
				Quantity:       qty,
			}
		}
		cart.Items[productID] = line
		return nil
	})
	if err != nil {
		s.stock.Release(ctx, productID, qty)
		s.metrics.IncOperation("add_item", "error")
		return nil, err
	}

	s.metrics.IncOperation("add_item", "ok")
	return updated, nil
}

// setQuantityAttempts bounds the snapshot-retry loop; each retry observes
// the previous writer's committed quantity, so contention converges fast.
const setQuantityAttempts = 5

// SetItemQuantity sets an existing line to an absolute quantity. Zero
// removes the line. Increases reserve the delta up front against a snapshot
// of the line; when another writer commits between snapshot and lock, the
// delta is recomputed against the committed quantity and the attempt
// re-runs, so concurrent writers all land instead of erroring out.
func (s *Service) SetItemQuantity(ctx context.Context, cartID, userID, productID string, qty int) (*domain.Cart, error) {
	if qty == 0 {
		return s.RemoveItem(ctx, cartID, userID, productID)
	}

	cart, err := s.lifecycle.Read(cartID)
	if err != nil {
		s.metrics.IncOperation("set_quantity", "error")
		return nil, err
	}
	if err := collab.RequireMember(cart, userID); err != nil {
		s.metrics.IncOperation("set_quantity", "forbidden")
		return nil, err
	}

	for attempt := 0; attempt < setQuantityAttempts; attempt++ {
		snapshot, exists := cart.Items[productID]
		if !exists {
			s.metrics.IncOperation("set_quantity", "error")
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s is not in the cart", productID))
		}

		delta := qty - snapshot.Quantity
		if delta > 0 {
			if err := s.stock.Reserve(ctx, productID, delta); err != nil {
				s.metrics.IncOperation("set_quantity", "stock")
				return nil, err
			}
		}

		raced := false
		released := 0
		updated, err := s.lifecycle.WithCart(ctx, cartID, lifecycle.Options{}, func(cart *domain.Cart, _ time.Time) error {
			if err := collab.RequireMember(cart, userID); err != nil {
				return err
			}
			line, exists := cart.Items[productID]
			if !exists {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s is not in the cart", productID))
			}
			if line.Quantity != snapshot.Quantity {
				// The reservation was sized against a stale quantity; back
				// out and recompute against the committed state.
				raced = true
				return pkgerrors.New(pkgerrors.CodeConflict, "stale line snapshot")
			}
			if delta < 0 {
				released = -delta
			}
			line.Quantity = qty
			cart.Items[productID] = line
			return nil
		})
		if err != nil {
			if delta > 0 {
				s.stock.Release(ctx, productID, delta)
			}
			if raced {
				cart, err = s.lifecycle.Read(cartID)
				if err != nil {
					s.metrics.IncOperation("set_quantity", "error")
					return nil, err
				}
				continue
			}
			s.metrics.IncOperation("set_quantity", "error")
			return nil, err
		}

		if released > 0 {
			s.stock.Release(ctx, productID, released)
		}
		s.metrics.IncOperation("set_quantity", "ok")
		return updated, nil
	}

	s.metrics.IncOperation("set_quantity", "conflict")
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart changed concurrently, retry the update")
}

// RemoveItem drops a line and releases its reservation.
func (s *Service) RemoveItem(ctx context.Context, cartID, userID, productID string) (*domain.Cart, error) {
	released := 0
	updated, err := s.lifecycle.WithCart(ctx, cartID, lifecycle.Options{}, func(cart *domain.Cart, _ time.Time) error {
		if err := collab.RequireMember(cart, userID); err != nil {
			return err
		}
		line, exists := cart.Items[productID]
		if !exists {
			return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s is not in the cart", productID))
		}
		released = line.Quantity
		delete(cart.Items, productID)
		return nil
	})
	if err != nil {
		s.metrics.IncOperation("remove_item", "error")
		return nil, err
	}

	s.stock.Release(ctx, productID, released)
	s.metrics.IncOperation("remove_item", "ok")
	return updated, nil
}
