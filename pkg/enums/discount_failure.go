package enums

// DiscountFailure names the reason a discount could not be applied.
type DiscountFailure string

const (
	DiscountFailureUnknown      DiscountFailure = "unknown"
	DiscountFailureExpired      DiscountFailure = "expired"
	DiscountFailureExhausted    DiscountFailure = "exhausted"
	DiscountFailureBelowMinimum DiscountFailure = "below_minimum"
)

// String implements fmt.Stringer.
func (d DiscountFailure) String() string {
	return string(d)
}
