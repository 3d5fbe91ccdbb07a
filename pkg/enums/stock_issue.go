package enums

// StockIssueKind classifies an inventory shortfall for a cart line.
type StockIssueKind string

const (
	StockIssueOutOfStock   StockIssueKind = "out_of_stock"
	StockIssueInsufficient StockIssueKind = "insufficient_stock"
)

// String implements fmt.Stringer.
func (s StockIssueKind) String() string {
	return string(s)
}
