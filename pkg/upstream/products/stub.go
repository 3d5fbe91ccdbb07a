package products

import (
	"context"
	"sync"
)

// Stub is an in-memory product collaborator used in dev mode and tests.
type Stub struct {
	mu       sync.RWMutex
	products map[string]Product
}

// NewStub builds an empty stub catalog.
func NewStub() *Stub {
	return &Stub{products: make(map[string]Product)}
}

// NewStubWithFixtures builds a stub preloaded with the dev catalog.
func NewStubWithFixtures() *Stub {
	s := NewStub()
	s.SetProduct(Product{ID: "prod_001", Name: "Wireless Headphones", PriceCents: 2999})
	s.SetProduct(Product{ID: "prod_002", Name: "Mechanical Keyboard", PriceCents: 8999})
	s.SetProduct(Product{ID: "prod_003", Name: "USB-C Hub", PriceCents: 4599})
	s.SetProduct(Product{ID: "prod_004", Name: "Laptop Stand", PriceCents: 3499})
	return s
}

// SetProduct inserts or replaces a catalog entry.
func (s *Stub) SetProduct(product Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[product.ID] = product
}

// Discontinue removes a product so lookups return nil.
func (s *Stub) Discontinue(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, id)
}

// GetProduct implements Client.
func (s *Stub) GetProduct(ctx context.Context, id string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if product, ok := s.products[id]; ok {
		copy := product
		return &copy, nil
	}
	return nil, nil
}

// GetProducts implements Client.
func (s *Stub) GetProducts(ctx context.Context, ids []string) (map[string]*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]*Product, len(ids))
	for _, id := range ids {
		if product, ok := s.products[id]; ok {
			copy := product
			result[id] = &copy
		}
	}
	return result, nil
}
