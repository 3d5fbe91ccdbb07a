package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/cartshare/cartshare-backend/pkg/enums"
)

// Discount is a reusable discount definition. Code is stored uppercase so
// lookups are case-insensitive.
type Discount struct {
	ID                uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Code              string             `gorm:"column:code;uniqueIndex;not null"`
	Type              enums.DiscountType `gorm:"column:type;not null"`
	Value             int64              `gorm:"column:value;not null"`
	MinCartValueCents *int64             `gorm:"column:min_cart_value_cents"`
	MaxUses           *int               `gorm:"column:max_uses"`
	CurrentUses       int                `gorm:"column:current_uses;not null;default:0"`
	BuyX              int                `gorm:"column:buy_x;not null;default:0"`
	GetY              int                `gorm:"column:get_y;not null;default:0"`
	ExpiresAt         *time.Time         `gorm:"column:expires_at"`
	CreatedAt         time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// IsExpired reports whether the definition itself is past its expiry.
func (d *Discount) IsExpired(now time.Time) bool {
	return d.ExpiresAt != nil && !now.Before(*d.ExpiresAt)
}

// IsExhausted reports whether the usage cap has been reached.
func (d *Discount) IsExhausted() bool {
	return d.MaxUses != nil && d.CurrentUses >= *d.MaxUses
}
