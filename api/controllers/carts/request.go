package carts

// Caller identity travels in the payload: the service fronts trusted
// first-party clients and authentication is out of scope here.

type CreateCartRequest struct {
	UserID string `json:"userId" validate:"required"`
}

type AddItemRequest struct {
	UserID    string `json:"userId" validate:"required"`
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type SetQuantityRequest struct {
	UserID   string `json:"userId" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=0"`
}

type DiscountRequest struct {
	UserID string `json:"userId" validate:"required"`
	Code   string `json:"code" validate:"required"`
}

type CollaboratorRequest struct {
	UserID         string `json:"userId" validate:"required"`
	CollaboratorID string `json:"collaboratorId" validate:"required"`
}

type RefreshRequest struct {
	UserID string `json:"userId" validate:"required"`
}

type ValidateRequest struct {
	UserID string `json:"userId" validate:"required"`
}

type SaveRequest struct {
	UserID string `json:"userId" validate:"required"`
	Name   string `json:"name" validate:"required,max=120"`
}

type RestoreRequest struct {
	UserID string `json:"userId" validate:"required"`
	Mode   string `json:"mode" validate:"required,oneof=merge replace"`
}

type CheckoutRequest struct {
	UserID   string `json:"userId" validate:"required"`
	Currency string `json:"currency" validate:"omitempty,len=3"`
}
