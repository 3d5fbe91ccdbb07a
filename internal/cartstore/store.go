package cartstore

import (
	"sync"

	"github.com/cartshare/cartshare-backend/pkg/domain"
)

// Store is the authoritative in-memory home of live carts. All reads and
// writes go through deep copies so callers never alias stored state.
type Store struct {
	mu    sync.RWMutex
	carts map[string]*domain.Cart
}

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{carts: make(map[string]*domain.Cart)}
}

// Put stores a deep copy of the cart, replacing any previous version.
func (s *Store) Put(cart *domain.Cart) {
	if cart == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[cart.ID] = cart.Clone()
}

// Get returns a deep copy of the cart, or false when it does not exist.
func (s *Store) Get(id string) (*domain.Cart, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cart, ok := s.carts[id]
	if !ok {
		return nil, false
	}
	return cart.Clone(), true
}

// Delete removes the cart; deleting a missing cart is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, id)
}

// Len reports the number of live carts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.carts)
}
