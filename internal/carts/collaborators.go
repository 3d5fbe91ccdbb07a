package carts

import (
	"context"
	"time"

	"github.com/cartshare/cartshare-backend/internal/collab"
	"github.com/cartshare/cartshare-backend/internal/lifecycle"
	"github.com/cartshare/cartshare-backend/pkg/domain"
	pkgerrors "github.com/cartshare/cartshare-backend/pkg/errors"
)

// AddCollaborator grants another user mutation access to the cart. Owner
// only; adding the owner or an existing collaborator is a no-op.
func (s *Service) AddCollaborator(ctx context.Context, cartID, ownerID, collaboratorID string) (*domain.Cart, error) {
	if collaboratorID == "" {
		s.metrics.IncOperation("add_collaborator", "error")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "collaborator user id is required")
	}

	updated, err := s.lifecycle.WithCart(ctx, cartID, lifecycle.Options{}, func(cart *domain.Cart, _ time.Time) error {
		if err := collab.RequireOwner(cart, ownerID); err != nil {
			return err
		}
		if collaboratorID == cart.OwnerID || cart.HasCollaborator(collaboratorID) {
			return nil
		}
		cart.Collaborators = append(cart.Collaborators, collaboratorID)
		return nil
	})
	if err != nil {
		s.metrics.IncOperation("add_collaborator", "error")
		return nil, err
	}
	s.metrics.IncOperation("add_collaborator", "ok")
	return updated, nil
}

// RemoveCollaborator revokes a user's access. Owner only; removing someone
// who is not a collaborator is a no-op.
func (s *Service) RemoveCollaborator(ctx context.Context, cartID, ownerID, collaboratorID string) (*domain.Cart, error) {
	updated, err := s.lifecycle.WithCart(ctx, cartID, lifecycle.Options{}, func(cart *domain.Cart, _ time.Time) error {
		if err := collab.RequireOwner(cart, ownerID); err != nil {
			return err
		}
		filtered := cart.Collaborators[:0]
		for _, id := range cart.Collaborators {
			if id != collaboratorID {
				filtered = append(filtered, id)
			}
		}
		cart.Collaborators = filtered
		return nil
	})
	if err != nil {
		s.metrics.IncOperation("remove_collaborator", "error")
		return nil, err
	}
	s.metrics.IncOperation("remove_collaborator", "ok")
	return updated, nil
}
