package carts

import (
	"sort"
	"time"

	"github.com/cartshare/cartshare-backend/pkg/db/models"
	"github.com/cartshare/cartshare-backend/pkg/domain"
	"github.com/cartshare/cartshare-backend/pkg/types"
)

type ItemResponse struct {
	ProductID      string `json:"productId"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
	LineTotalCents int64  `json:"lineTotalCents"`
}

type CartResponse struct {
	ID            string                  `json:"id"`
	OwnerID       string                  `json:"ownerId"`
	Collaborators []string                `json:"collaborators"`
	Items         []ItemResponse          `json:"items"`
	Discount      *domain.AppliedDiscount `json:"discount,omitempty"`
	SubtotalCents int64                   `json:"subtotalCents"`
	DiscountCents int64                   `json:"discountCents"`
	TotalCents    int64                   `json:"totalCents"`
	Status        string                  `json:"status"`
	CreatedAt     time.Time               `json:"createdAt"`
	UpdatedAt     time.Time               `json:"updatedAt"`
	ExpiresAt     time.Time               `json:"expiresAt"`
	CheckoutLock  *domain.CheckoutLock    `json:"checkoutLock,omitempty"`
	CurrencyView  *domain.CurrencyView    `json:"currencyView,omitempty"`
}

func newCartResponse(cart *domain.Cart, now time.Time, view *domain.CurrencyView) CartResponse {
	items := make([]ItemResponse, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, ItemResponse{
			ProductID:      item.ProductID,
			Name:           item.Name,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
			LineTotalCents: item.UnitPriceCents * int64(item.Quantity),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	collaborators := cart.Collaborators
	if collaborators == nil {
		collaborators = []string{}
	}

	return CartResponse{
		ID:            cart.ID,
		OwnerID:       cart.OwnerID,
		Collaborators: collaborators,
		Items:         items,
		Discount:      cart.Discount,
		SubtotalCents: cart.SubtotalCents(),
		DiscountCents: cart.DiscountCents(),
		TotalCents:    cart.TotalCents(),
		Status:        cart.Status(now).String(),
		CreatedAt:     cart.CreatedAt,
		UpdatedAt:     cart.UpdatedAt,
		ExpiresAt:     cart.ExpiresAt,
		CheckoutLock:  cart.CheckoutLock,
		CurrencyView:  view,
	}
}

type SavedCartResponse struct {
	ID      string           `json:"id"`
	UserID  string           `json:"userId"`
	Name    string           `json:"name"`
	Items   types.SavedItems `json:"items"`
	SavedAt time.Time        `json:"savedAt"`
}

func newSavedCartResponse(saved *models.SavedCart) SavedCartResponse {
	items := saved.Items
	if items == nil {
		items = types.SavedItems{}
	}
	return SavedCartResponse{
		ID:      saved.ID.String(),
		UserID:  saved.UserID,
		Name:    saved.Name,
		Items:   items,
		SavedAt: saved.SavedAt,
	}
}

type RestoreResponse struct {
	Cart   CartResponse          `json:"cart"`
	Issues []domain.RestoreIssue `json:"issues"`
}
