package inventory

import (
	"context"
	"sync"
)

// Stub is an in-memory inventory collaborator tracking total and reserved
// quantities per product.
type Stub struct {
	mu       sync.Mutex
	total    map[string]int
	reserved map[string]int
}

// NewStub builds an empty stub.
func NewStub() *Stub {
	return &Stub{
		total:    make(map[string]int),
		reserved: make(map[string]int),
	}
}

// NewStubWithFixtures builds a stub preloaded with dev stock levels.
func NewStubWithFixtures() *Stub {
	s := NewStub()
	s.SetStock("prod_001", 50)
	s.SetStock("prod_002", 10)
	s.SetStock("prod_003", 3)
	s.SetStock("prod_004", 0)
	return s
}

// SetStock resets a product's total stock and clears reservations.
func (s *Stub) SetStock(id string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total[id] = qty
	s.reserved[id] = 0
}

// GetAvailable implements Client.
func (s *Stub) GetAvailable(ctx context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.availableLocked(id), nil
}

// Reserve implements Client with an atomic check-and-decrement.
func (s *Stub) Reserve(ctx context.Context, id string, qty int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.availableLocked(id) < qty {
		return false, nil
	}
	s.reserved[id] += qty
	return true, nil
}

// Release implements Client; releasing more than reserved floors at zero.
func (s *Stub) Release(ctx context.Context, id string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	remaining := s.reserved[id] - qty
	if remaining < 0 {
		remaining = 0
	}
	s.reserved[id] = remaining
	return nil
}

// CheckBatch implements Client.
func (s *Stub) CheckBatch(ctx context.Context, ids []string) (map[string]Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make(map[string]Availability, len(ids))
	for _, id := range ids {
		result[id] = Availability{
			Available: s.availableLocked(id),
			Reserved:  s.reserved[id],
		}
	}
	return result, nil
}

func (s *Stub) availableLocked(id string) int {
	available := s.total[id] - s.reserved[id]
	if available < 0 {
		return 0
	}
	return available
}
