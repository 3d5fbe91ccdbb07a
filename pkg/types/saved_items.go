package types

// SavedItem is one line of a saved-cart snapshot, copied by value from the
// source cart at save time.
type SavedItem struct {
	ProductID      string `json:"productId"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
}

// SavedItems is persisted as a JSON column on the saved_carts table.
type SavedItems []SavedItem
