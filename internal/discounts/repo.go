package discounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cartshare/cartshare-backend/pkg/db"
	"github.com/cartshare/cartshare-backend/pkg/db/models"
	"github.com/cartshare/cartshare-backend/pkg/enums"
	pkgerrors "github.com/cartshare/cartshare-backend/pkg/errors"
)

// Repository persists discount definitions. Codes are normalized to upper
// case on both write and lookup.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository over the shared client.
func NewRepository(client *db.Client) *Repository {
	return &Repository{db: client.DB()}
}

// Create inserts a new definition.
func (r *Repository) Create(ctx context.Context, discount *models.Discount) error {
	if discount.ID == uuid.Nil {
		discount.ID = uuid.New()
	}
	discount.Code = strings.ToUpper(discount.Code)
	if err := r.db.WithContext(ctx).Create(discount).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating discount")
	}
	return nil
}

// FindByCode looks up a definition case-insensitively. Unknown codes return
// (nil, nil).
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Discount, error) {
	var discount models.Discount
	err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&discount).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finding discount")
	}
	return &discount, nil
}

// IncrementUses bumps the usage counter, guarded against racing past the
// cap. A zero-row update means the cap was reached between evaluation and
// commit.
func (r *Repository) IncrementUses(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.Discount{}).
		Where("id = ? AND (max_uses IS NULL OR current_uses < max_uses)", id).
		UpdateColumn("current_uses", gorm.Expr("current_uses + 1"))
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "incrementing discount uses")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeDiscount, "discount has no uses left").
			WithDetails(map[string]string{"reason": enums.DiscountFailureExhausted.String()})
	}
	return nil
}

// Seed installs the built-in dev discounts if they are not present yet.
func Seed(ctx context.Context, repo *Repository) error {
	minFlat := int64(2000)
	seeds := []models.Discount{
		{Code: "FLAT500", Type: enums.DiscountTypeFixedAmount, Value: 500, MinCartValueCents: &minFlat},
		{Code: "SAVE10", Type: enums.DiscountTypePercentage, Value: 10},
		{Code: "B2G1", Type: enums.DiscountTypeBuyXGetY, BuyX: 2, GetY: 1},
	}
	for i := range seeds {
		existing, err := repo.FindByCode(ctx, seeds[i].Code)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if err := repo.Create(ctx, &seeds[i]); err != nil {
			return fmt.Errorf("seeding discount %s: %w", seeds[i].Code, err)
		}
	}
	return nil
}
