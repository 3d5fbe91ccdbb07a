package carts

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cartshare/cartshare-backend/internal/collab"
	"github.com/cartshare/cartshare-backend/internal/currency"
	"github.com/cartshare/cartshare-backend/internal/discounts"
	"github.com/cartshare/cartshare-backend/internal/inventory"
	"github.com/cartshare/cartshare-backend/internal/lifecycle"
	"github.com/cartshare/cartshare-backend/internal/savedcarts"
	"github.com/cartshare/cartshare-backend/pkg/domain"
	pkgerrors "github.com/cartshare/cartshare-backend/pkg/errors"
	"github.com/cartshare/cartshare-backend/pkg/logger"
	"github.com/cartshare/cartshare-backend/pkg/metrics"
	"github.com/cartshare/cartshare-backend/pkg/upstream/products"
)

// Service orchestrates cart operations. Collaborator calls (catalog, stock,
// rates) happen outside the per-cart critical section; the lifecycle manager
// re-validates cart state under the lock before anything is committed.
type Service struct {
	lifecycle    *lifecycle.Manager
	products     products.Client
	stock        *inventory.Coordinator
	discounts    *discounts.Repository
	converter    *currency.Converter
	saved        *savedcarts.Repository
	metrics      *metrics.CartMetrics
	log          *logger.Logger
	expiryWindow time.Duration
}

// NewService wires the cart service.
func NewService(
	manager *lifecycle.Manager,
	productClient products.Client,
	stock *inventory.Coordinator,
	discountRepo *discounts.Repository,
	converter *currency.Converter,
	savedRepo *savedcarts.Repository,
	cartMetrics *metrics.CartMetrics,
	log *logger.Logger,
	expiryWindow time.Duration,
) *Service {
	return &Service{
		lifecycle:    manager,
		products:     productClient,
		stock:        stock,
		discounts:    discountRepo,
		converter:    converter,
		saved:        savedRepo,
		metrics:      cartMetrics,
		log:          log,
		expiryWindow: expiryWindow,
	}
}

// Now exposes the service clock for response shaping.
func (s *Service) Now() time.Time {
	return s.lifecycle.Now()
}

// Create opens a fresh cart owned by the caller.
func (s *Service) Create(ctx context.Context, ownerID string) (*domain.Cart, error) {
	now := s.lifecycle.Now()
	cart := &domain.Cart{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Items:     map[string]domain.CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.expiryWindow),
	}
	s.lifecycle.Insert(cart)
	s.metrics.IncOperation("create_cart", "ok")

	if s.log != nil {
		s.log.Info(s.log.WithCartID(ctx, cart.ID), "cart created")
	}
	return cart, nil
}

// Get returns the cart for any member, optionally with a converted currency
// view. The view uses the rate pinned by an active checkout lock when the
// currencies match.
func (s *Service) Get(ctx context.Context, cartID, userID, displayCurrency string) (*domain.Cart, *domain.CurrencyView, error) {
	cart, err := s.lifecycle.Read(cartID)
	if err != nil {
		return nil, nil, err
	}
	if err := collab.RequireMember(cart, userID); err != nil {
		return nil, nil, err
	}

	if displayCurrency == "" {
		return cart, nil, nil
	}
	view, err := s.converter.View(ctx, cart, displayCurrency, s.lifecycle.Now())
	if err != nil {
		return nil, nil, err
	}
	return cart, view, nil
}

// Delete removes the cart and releases its reservations. Owner only; a cart
// under an active checkout lock cannot be deleted.
func (s *Service) Delete(ctx context.Context, cartID, userID string) error {
	removed, err := s.lifecycle.Remove(ctx, cartID, func(cart *domain.Cart, now time.Time) error {
		if err := collab.RequireOwner(cart, userID); err != nil {
			return err
		}
		if cart.LockActive(now) {
			return pkgerrors.New(pkgerrors.CodeLocked, "cart is locked for checkout").
				WithDetails(map[string]any{"lockedUntil": cart.CheckoutLock.LockedUntil})
		}
		return nil
	})
	if err != nil {
		s.metrics.IncOperation("delete_cart", "error")
		return err
	}

	s.stock.ReleaseLines(ctx, removed.Items)
	s.metrics.IncOperation("delete_cart", "ok")
	if s.log != nil {
		s.log.Info(s.log.WithCartID(ctx, cartID), "cart deleted")
	}
	return nil
}

// Refresh re-arms the expiry window. Members may revive an already expired
// cart; items and discount survive untouched.
func (s *Service) Refresh(ctx context.Context, cartID, userID string) (*domain.Cart, error) {
	cart, err := s.lifecycle.WithCart(ctx, cartID, lifecycle.Options{AllowExpired: true}, func(cart *domain.Cart, now time.Time) error {
		if err := collab.RequireMember(cart, userID); err != nil {
			return err
		}
		cart.ExpiresAt = now.Add(s.expiryWindow)
		return nil
	})
	if err != nil {
		s.metrics.IncOperation("refresh_cart", "error")
		return nil, err
	}
	s.metrics.IncOperation("refresh_cart", "ok")
	return cart, nil
}

// Validate re-checks every line against current stock without mutating the
// cart.
func (s *Service) Validate(ctx context.Context, cartID, userID string) (*domain.CartValidation, error) {
	cart, err := s.lifecycle.Read(cartID)
	if err != nil {
		return nil, err
	}
	if err := collab.RequireMember(cart, userID); err != nil {
		return nil, err
	}
	return s.stock.Validate(ctx, cart)
}
