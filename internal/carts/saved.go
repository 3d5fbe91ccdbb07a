package carts

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/cartshare/cartshare-backend/internal/collab"
	"github.com/cartshare/cartshare-backend/internal/lifecycle"
	"github.com/cartshare/cartshare-backend/pkg/db/models"
	"github.com/cartshare/cartshare-backend/pkg/domain"
	"github.com/cartshare/cartshare-backend/pkg/enums"
	pkgerrors "github.com/cartshare/cartshare-backend/pkg/errors"
	"github.com/cartshare/cartshare-backend/pkg/types"
	"github.com/cartshare/cartshare-backend/pkg/upstream/products"
)

// Save snapshots the cart's current lines under the caller's account. The
// snapshot is a value copy with its own lifetime; deleting the source cart
// later does not touch it.
func (s *Service) Save(ctx context.Context, cartID, userID, name string) (*models.SavedCart, error) {
	cart, err := s.lifecycle.Read(cartID)
	if err != nil {
		s.metrics.IncOperation("save_cart", "error")
		return nil, err
	}
	if err := collab.RequireMember(cart, userID); err != nil {
		s.metrics.IncOperation("save_cart", "forbidden")
		return nil, err
	}

	items := make(types.SavedItems, 0, len(cart.Items))
	for _, productID := range sortedItemIDs(cart.Items) {
		item := cart.Items[productID]
		items = append(items, types.SavedItem{
			ProductID:      item.ProductID,
			Name:           item.Name,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
		})
	}

	saved := &models.SavedCart{
		UserID: userID,
		Name:   name,
		Items:  items,
	}
	if err := s.saved.Create(ctx, saved); err != nil {
		s.metrics.IncOperation("save_cart", "error")
		return nil, err
	}
	s.metrics.IncOperation("save_cart", "ok")
	return saved, nil
}

// ListSaved returns the caller's snapshots.
func (s *Service) ListSaved(ctx context.Context, userID string) ([]models.SavedCart, error) {
	return s.saved.ListByUser(ctx, userID)
}

// Restore applies a snapshot onto a live cart. Product data is refreshed
// from the catalog: discontinued products are skipped and reported, never
// fatal. Stock is reserved per restored line before the critical section;
// lines the collaborator cannot cover are skipped and reported the same way.
func (s *Service) Restore(ctx context.Context, cartID, userID string, savedID uuid.UUID, mode enums.RestoreMode) (*domain.Cart, []domain.RestoreIssue, error) {
	saved, err := s.saved.FindForUser(ctx, savedID, userID)
	if err != nil {
		s.metrics.IncOperation("restore_cart", "error")
		return nil, nil, err
	}

	cart, err := s.lifecycle.Read(cartID)
	if err != nil {
		s.metrics.IncOperation("restore_cart", "error")
		return nil, nil, err
	}
	if err := collab.RequireMember(cart, userID); err != nil {
		s.metrics.IncOperation("restore_cart", "forbidden")
		return nil, nil, err
	}

	ids := make([]string, 0, len(saved.Items))
	for _, item := range saved.Items {
		ids = append(ids, item.ProductID)
	}
	catalog, err := s.products.GetProducts(ctx, ids)
	if err != nil {
		s.metrics.IncOperation("restore_cart", "error")
		return nil, nil, err
	}

	var issues []domain.RestoreIssue
	restorable := make([]restoreLine, 0, len(saved.Items))
	for _, item := range saved.Items {
		product, ok := catalog[item.ProductID]
		if !ok || product == nil {
			issues = append(issues, domain.RestoreIssue{
				ProductID: item.ProductID,
				Name:      item.Name,
				Reason:    "product no longer available",
			})
			continue
		}
		if err := s.stock.Reserve(ctx, item.ProductID, item.Quantity); err != nil {
			appErr := pkgerrors.As(err)
			if appErr == nil || appErr.Code() != pkgerrors.CodeStock {
				s.releaseRestoreLines(ctx, restorable)
				s.metrics.IncOperation("restore_cart", "error")
				return nil, nil, err
			}
			issues = append(issues, domain.RestoreIssue{
				ProductID: item.ProductID,
				Name:      item.Name,
				Reason:    "insufficient stock",
			})
			continue
		}
		restorable = append(restorable, restoreLine{
			product:  *product,
			quantity: item.Quantity,
		})
	}

	var replaced map[string]domain.CartItem
	updated, err := s.lifecycle.WithCart(ctx, cartID, lifecycle.Options{}, func(cart *domain.Cart, _ time.Time) error {
		if err := collab.RequireMember(cart, userID); err != nil {
			return err
		}
		if mode == enums.RestoreModeReplace {
			replaced = cart.Items
			cart.Items = make(map[string]domain.CartItem, len(restorable))
		}
		for _, line := range restorable {
			existing, ok := cart.Items[line.product.ID]
			if ok {
				existing.Quantity += line.quantity
				cart.Items[line.product.ID] = existing
				continue
			}
			cart.Items[line.product.ID] = domain.CartItem{
				ProductID:      line.product.ID,
				Name:           line.product.Name,
				UnitPriceCents: line.product.PriceCents,
				Quantity:       line.quantity,
			}
		}
		return nil
	})
	if err != nil {
		s.releaseRestoreLines(ctx, restorable)
		s.metrics.IncOperation("restore_cart", "error")
		return nil, nil, err
	}

	if mode == enums.RestoreModeReplace {
		s.stock.ReleaseLines(ctx, replaced)
	}
	s.metrics.IncOperation("restore_cart", "ok")
	if s.log != nil {
		s.log.Info(s.log.WithCartID(ctx, cartID), fmt.Sprintf("restored saved cart %s in %s mode", savedID, mode))
	}
	return updated, issues, nil
}

type restoreLine struct {
	product  products.Product
	quantity int
}

func (s *Service) releaseRestoreLines(ctx context.Context, lines []restoreLine) {
	for _, line := range lines {
		s.stock.Release(ctx, line.product.ID, line.quantity)
	}
}

func sortedItemIDs(items map[string]domain.CartItem) []string {
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
