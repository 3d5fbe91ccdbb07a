package enums

// CheckoutIssueKind classifies a problem found during checkout validation.
type CheckoutIssueKind string

const (
	CheckoutIssueOutOfStock   CheckoutIssueKind = "out_of_stock"
	CheckoutIssueInsufficient CheckoutIssueKind = "insufficient_stock"
	CheckoutIssuePriceChanged CheckoutIssueKind = "price_changed"
	CheckoutIssueUnavailable  CheckoutIssueKind = "product_unavailable"
)

// String implements fmt.Stringer.
func (c CheckoutIssueKind) String() string {
	return string(c)
}
