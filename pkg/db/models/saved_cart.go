package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/cartshare/cartshare-backend/pkg/types"
)

// SavedCart is an immutable snapshot of a cart's line items, owned by the
// saving user and independent of the source cart's lifetime.
type SavedCart struct {
	ID      uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	UserID  string           `gorm:"column:user_id;index;not null"`
	Name    string           `gorm:"column:name;not null"`
	Items   types.SavedItems `gorm:"column:items;serializer:json"`
	SavedAt time.Time        `gorm:"column:saved_at;autoCreateTime"`
}
