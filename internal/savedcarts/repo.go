package savedcarts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cartshare/cartshare-backend/pkg/db"
	"github.com/cartshare/cartshare-backend/pkg/db/models"
	pkgerrors "github.com/cartshare/cartshare-backend/pkg/errors"
)

// Repository persists saved-cart snapshots.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository over the shared client.
func NewRepository(client *db.Client) *Repository {
	return &Repository{db: client.DB()}
}

// Create inserts a snapshot.
func (r *Repository) Create(ctx context.Context, saved *models.SavedCart) error {
	if saved.ID == uuid.Nil {
		saved.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(saved).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating saved cart")
	}
	return nil
}

// FindForUser fetches a snapshot scoped to its owner. Snapshots are private:
// someone else's id behaves exactly like a missing one.
func (r *Repository) FindForUser(ctx context.Context, id uuid.UUID, userID string) (*models.SavedCart, error) {
	var saved models.SavedCart
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&saved).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "saved cart not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finding saved cart")
	}
	return &saved, nil
}

// ListByUser returns a user's snapshots, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]models.SavedCart, error) {
	var saved []models.SavedCart
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("saved_at DESC").
		Find(&saved).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing saved carts")
	}
	return saved, nil
}
