package pricing

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cartshare/cartshare-backend/pkg/db/models"
	"github.com/cartshare/cartshare-backend/pkg/domain"
	"github.com/cartshare/cartshare-backend/pkg/enums"
	pkgerrors "github.com/cartshare/cartshare-backend/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// Evaluate computes the discount amount in cents for the given cart. A
// definition that cannot apply yields a DISCOUNT_INVALID error carrying the
// failure reason; gates are checked in a fixed order so callers always see
// the first failing one.
func Evaluate(def *models.Discount, cart *domain.Cart, now time.Time) (int64, error) {
	if def == nil {
		return 0, failure(enums.DiscountFailureUnknown, "discount code not found")
	}
	if def.IsExpired(now) {
		return 0, failure(enums.DiscountFailureExpired, fmt.Sprintf("discount %s has expired", def.Code))
	}
	if def.IsExhausted() {
		return 0, failure(enums.DiscountFailureExhausted, fmt.Sprintf("discount %s has no uses left", def.Code))
	}

	subtotal := cart.SubtotalCents()
	if def.MinCartValueCents != nil && subtotal < *def.MinCartValueCents {
		return 0, failure(enums.DiscountFailureBelowMinimum,
			fmt.Sprintf("discount %s requires a cart value of at least %d", def.Code, *def.MinCartValueCents))
	}

	switch def.Type {
	case enums.DiscountTypePercentage:
		return percentageAmount(subtotal, def.Value), nil
	case enums.DiscountTypeFixedAmount:
		if def.Value > subtotal {
			return subtotal, nil
		}
		return def.Value, nil
	case enums.DiscountTypeBuyXGetY:
		return buyXGetYAmount(cart, def.BuyX, def.GetY), nil
	default:
		return 0, pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("unknown discount type %q", def.Type))
	}
}

// percentageAmount rounds half up to the nearest cent.
func percentageAmount(subtotalCents, percent int64) int64 {
	return decimal.NewFromInt(subtotalCents).
		Mul(decimal.NewFromInt(percent)).
		Div(hundred).
		Round(0).
		IntPart()
}

// buyXGetYAmount expands cart lines into unit prices, sorts them ascending,
// and marks the cheapest getY units of each complete buyX+getY group free.
// Incomplete trailing groups earn nothing.
func buyXGetYAmount(cart *domain.Cart, buyX, getY int) int64 {
	groupSize := buyX + getY
	if groupSize <= 0 || getY <= 0 {
		return 0
	}

	var units []int64
	for _, item := range cart.Items {
		for i := 0; i < item.Quantity; i++ {
			units = append(units, item.UnitPriceCents)
		}
	}
	sort.Slice(units, func(i, j int) bool { return units[i] < units[j] })

	var amount int64
	groups := len(units) / groupSize
	for g := 0; g < groups; g++ {
		for i := 0; i < getY; i++ {
			amount += units[g*groupSize+i]
		}
	}
	return amount
}

func failure(reason enums.DiscountFailure, message string) error {
	return pkgerrors.New(pkgerrors.CodeDiscount, message).
		WithDetails(map[string]string{"reason": reason.String()})
}

// FailureReason extracts the discount failure reason from an evaluation
// error, or empty when the error is not a discount failure.
func FailureReason(err error) enums.DiscountFailure {
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeDiscount {
		return ""
	}
	details, ok := appErr.Details().(map[string]string)
	if !ok {
		return ""
	}
	return enums.DiscountFailure(details["reason"])
}
