package inventory

import (
	"context"
	"sort"

	"github.com/cartshare/cartshare-backend/pkg/domain"
	"github.com/cartshare/cartshare-backend/pkg/enums"
	pkgerrors "github.com/cartshare/cartshare-backend/pkg/errors"
	"github.com/cartshare/cartshare-backend/pkg/logger"
	upstream "github.com/cartshare/cartshare-backend/pkg/upstream/inventory"
)

// Coordinator mediates between cart state and the stock collaborator.
// Reservation is delegated to the collaborator's atomic reserve so two carts
// racing for the last unit cannot both win.
type Coordinator struct {
	client upstream.Client
	log    *logger.Logger
}

// NewCoordinator builds a coordinator over the stock collaborator.
func NewCoordinator(client upstream.Client, log *logger.Logger) *Coordinator {
	return &Coordinator{client: client, log: log}
}

// Reserve attempts to hold qty additional units of a product. A false
// result means the collaborator refused; the typed error carries the
// shortfall for the response body.
func (c *Coordinator) Reserve(ctx context.Context, productID string, qty int) error {
	ok, err := c.client.Reserve(ctx, productID, qty)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	available, availErr := c.client.GetAvailable(ctx, productID)
	if availErr != nil {
		available = 0
	}
	issue := enums.StockIssueInsufficient
	if available == 0 {
		issue = enums.StockIssueOutOfStock
	}
	return pkgerrors.New(pkgerrors.CodeStock, "insufficient stock").
		WithDetails(domain.StockIssue{
			ProductID: productID,
			Issue:     issue,
			Requested: qty,
			Available: available,
		})
}

// Release returns units to the pool. Failures are logged and swallowed;
// the collaborator floors reservations at zero so over-release is harmless.
func (c *Coordinator) Release(ctx context.Context, productID string, qty int) {
	if qty <= 0 {
		return
	}
	if err := c.client.Release(ctx, productID, qty); err != nil && c.log != nil {
		c.log.Error(ctx, "releasing stock reservation failed", err)
	}
}

// ReleaseLines releases every line of a cart, used when a cart is deleted
// or replaced wholesale.
func (c *Coordinator) ReleaseLines(ctx context.Context, items map[string]domain.CartItem) {
	for productID, item := range items {
		c.Release(ctx, productID, item.Quantity)
	}
}

// Validate re-checks every cart line against current availability. Lines
// are reservation-backed, so the cart's own holdings count toward the line:
// a cart holding the last units of a product still validates clean. The
// cart is not mutated; callers surface the issues and let users decide.
func (c *Coordinator) Validate(ctx context.Context, cart *domain.Cart) (*domain.CartValidation, error) {
	availability, err := c.availability(ctx, cart)
	if err != nil {
		return nil, err
	}

	var issues []domain.StockIssue
	for _, productID := range sortedProductIDs(cart.Items) {
		item := cart.Items[productID]
		available := availability[productID]
		if available >= item.Quantity {
			continue
		}
		issue := enums.StockIssueInsufficient
		if available == 0 {
			issue = enums.StockIssueOutOfStock
		}
		issues = append(issues, domain.StockIssue{
			ProductID: productID,
			Issue:     issue,
			Requested: item.Quantity,
			Available: available,
		})
	}

	return &domain.CartValidation{Valid: len(issues) == 0, Issues: issues}, nil
}

// Availability returns, per cart line, how many units the cart can hold:
// free stock plus the share of existing reservations attributable to the
// line. The credit is capped at the collaborator's reserved count so a
// holding wiped by a restock is not counted twice.
func (c *Coordinator) Availability(ctx context.Context, cart *domain.Cart) (map[string]int, error) {
	return c.availability(ctx, cart)
}

func (c *Coordinator) availability(ctx context.Context, cart *domain.Cart) (map[string]int, error) {
	ids := sortedProductIDs(cart.Items)
	if len(ids) == 0 {
		return map[string]int{}, nil
	}
	reports, err := c.client.CheckBatch(ctx, ids)
	if err != nil {
		return nil, err
	}
	result := make(map[string]int, len(ids))
	for _, id := range ids {
		report := reports[id]
		credit := cart.Items[id].Quantity
		if credit > report.Reserved {
			credit = report.Reserved
		}
		result[id] = report.Available + credit
	}
	return result, nil
}

func sortedProductIDs(items map[string]domain.CartItem) []string {
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
