package collab

import (
	"github.com/cartshare/cartshare-backend/pkg/domain"
	"github.com/cartshare/cartshare-backend/pkg/enums"
	pkgerrors "github.com/cartshare/cartshare-backend/pkg/errors"
)

// Resolve determines the caller's capability against a cart.
func Resolve(cart *domain.Cart, userID string) enums.Capability {
	switch {
	case cart == nil || userID == "":
		return enums.CapabilityNone
	case cart.OwnerID == userID:
		return enums.CapabilityOwner
	case cart.HasCollaborator(userID):
		return enums.CapabilityCollaborator
	default:
		return enums.CapabilityNone
	}
}

// RequireMember rejects callers who are neither owner nor collaborator.
func RequireMember(cart *domain.Cart, userID string) error {
	if !Resolve(cart, userID).CanMutateItems() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "user is not a member of this cart")
	}
	return nil
}

// RequireOwner rejects everyone but the cart owner.
func RequireOwner(cart *domain.Cart, userID string) error {
	if !Resolve(cart, userID).CanManage() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the cart owner may perform this action")
	}
	return nil
}
