package checkout

import (
	"context"
	"sort"
	"time"

	"github.com/cartshare/cartshare-backend/internal/collab"
	"github.com/cartshare/cartshare-backend/internal/currency"
	"github.com/cartshare/cartshare-backend/internal/inventory"
	"github.com/cartshare/cartshare-backend/internal/lifecycle"
	"github.com/cartshare/cartshare-backend/pkg/domain"
	"github.com/cartshare/cartshare-backend/pkg/enums"
	pkgerrors "github.com/cartshare/cartshare-backend/pkg/errors"
	"github.com/cartshare/cartshare-backend/pkg/logger"
	"github.com/cartshare/cartshare-backend/pkg/metrics"
	"github.com/cartshare/cartshare-backend/pkg/upstream/products"
)

// Coordinator drives the time-boxed checkout handshake: validate every line
// against live catalog and stock, then freeze the cart for the lock window.
type Coordinator struct {
	lifecycle *lifecycle.Manager
	products  products.Client
	stock     *inventory.Coordinator
	converter *currency.Converter
	metrics   *metrics.CartMetrics
	log       *logger.Logger
	lockTTL   time.Duration
}

// NewCoordinator wires the checkout coordinator.
func NewCoordinator(
	manager *lifecycle.Manager,
	productClient products.Client,
	stock *inventory.Coordinator,
	converter *currency.Converter,
	cartMetrics *metrics.CartMetrics,
	log *logger.Logger,
	lockTTL time.Duration,
) *Coordinator {
	return &Coordinator{
		lifecycle: manager,
		products:  productClient,
		stock:     stock,
		converter: converter,
		metrics:   cartMetrics,
		log:       log,
		lockTTL:   lockTTL,
	}
}

// Initiate validates the cart and, when clean, acquires the checkout lock.
// Validation I/O runs outside the critical section; the lock is taken only
// after the cart re-passes its state gates. A blocked validation returns the
// issue list without locking anything.
func (c *Coordinator) Initiate(ctx context.Context, cartID, userID, displayCurrency string) (*domain.CheckoutValidation, error) {
	cart, err := c.lifecycle.Read(cartID)
	if err != nil {
		c.metrics.IncCheckout("error")
		return nil, err
	}
	if err := collab.RequireOwner(cart, userID); err != nil {
		c.metrics.IncCheckout("forbidden")
		return nil, err
	}
	if len(cart.Items) == 0 {
		c.metrics.IncCheckout("rejected")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot check out an empty cart")
	}

	issues, err := c.validateLines(ctx, cart)
	if err != nil {
		c.metrics.IncCheckout("error")
		return nil, err
	}
	if len(issues) > 0 {
		c.metrics.IncCheckout("rejected")
		return &domain.CheckoutValidation{Valid: false, Errors: issues}, nil
	}

	var rate *domain.ExchangeRate
	if displayCurrency != "" {
		rate, err = c.converter.Rate(ctx, displayCurrency)
		if err != nil {
			c.metrics.IncCheckout("error")
			return nil, err
		}
	}

	var lockedUntil time.Time
	_, err = c.lifecycle.WithCart(ctx, cartID, lifecycle.Options{}, func(cart *domain.Cart, now time.Time) error {
		if err := collab.RequireOwner(cart, userID); err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cannot check out an empty cart")
		}
		lockedUntil = now.Add(c.lockTTL)
		cart.CheckoutLock = &domain.CheckoutLock{
			LockedAt:     now,
			LockedUntil:  lockedUntil,
			ExchangeRate: rate,
		}
		return nil
	})
	if err != nil {
		appErr := pkgerrors.As(err)
		if appErr != nil && appErr.Code() == pkgerrors.CodeLocked {
			c.metrics.IncCheckout("locked")
		} else {
			c.metrics.IncCheckout("error")
		}
		return nil, err
	}

	c.metrics.IncCheckout("ok")
	if c.log != nil {
		c.log.Info(c.log.WithCartID(ctx, cartID), "checkout lock acquired")
	}
	return &domain.CheckoutValidation{
		Valid:        true,
		LockedUntil:  &lockedUntil,
		ExchangeRate: rate,
	}, nil
}

// Cancel releases the checkout lock and returns the cart to active. Owner
// only, idempotent: cancelling an unlocked or already-lapsed lock succeeds.
func (c *Coordinator) Cancel(ctx context.Context, cartID, userID string) (*domain.Cart, error) {
	opts := lifecycle.Options{AllowLocked: true, AllowExpired: true}
	cart, err := c.lifecycle.WithCart(ctx, cartID, opts, func(cart *domain.Cart, _ time.Time) error {
		if err := collab.RequireOwner(cart, userID); err != nil {
			return err
		}
		cart.CheckoutLock = nil
		return nil
	})
	if err != nil {
		c.metrics.IncCheckout("cancel_error")
		return nil, err
	}
	c.metrics.IncCheckout("cancelled")
	return cart, nil
}

// validateLines checks stock and price drift for every line. Issues are
// ordered by product id so responses are stable.
func (c *Coordinator) validateLines(ctx context.Context, cart *domain.Cart) ([]domain.CheckoutIssue, error) {
	ids := make([]string, 0, len(cart.Items))
	for id := range cart.Items {
		ids = append(ids, id)
	}

	catalog, err := c.products.GetProducts(ctx, ids)
	if err != nil {
		return nil, err
	}
	availability, err := c.stock.Availability(ctx, cart)
	if err != nil {
		return nil, err
	}

	var issues []domain.CheckoutIssue
	for _, productID := range sortedIDs(ids) {
		item := cart.Items[productID]

		product, ok := catalog[productID]
		if !ok || product == nil {
			issues = append(issues, domain.CheckoutIssue{
				ProductID: productID,
				Issue:     enums.CheckoutIssueUnavailable,
			})
			continue
		}
		if product.PriceCents != item.UnitPriceCents {
			issues = append(issues, domain.CheckoutIssue{
				ProductID:         productID,
				Issue:             enums.CheckoutIssuePriceChanged,
				PriceCents:        item.UnitPriceCents,
				CurrentPriceCents: product.PriceCents,
			})
		}

		available := availability[productID]
		if available < item.Quantity {
			issue := enums.CheckoutIssueInsufficient
			if available == 0 {
				issue = enums.CheckoutIssueOutOfStock
			}
			issues = append(issues, domain.CheckoutIssue{
				ProductID: productID,
				Issue:     issue,
				Requested: item.Quantity,
				Available: available,
			})
		}
	}
	return issues, nil
}

func sortedIDs(ids []string) []string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return sorted
}
