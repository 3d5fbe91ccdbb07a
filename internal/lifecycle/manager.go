package lifecycle

import (
	"context"
	"time"

	"github.com/cartshare/cartshare-backend/internal/cartstore"
	"github.com/cartshare/cartshare-backend/pkg/domain"
	pkgerrors "github.com/cartshare/cartshare-backend/pkg/errors"
)

// Manager serializes every mutation of a cart behind its keyed mutex and
// applies lifecycle rules lazily: expiry and checkout-lock TTL are evaluated
// against the clock on access, never by background sweeps.
type Manager struct {
	store *cartstore.Store
	locks *cartstore.Locks
	clock func() time.Time
}

// Options relaxes the lifecycle gates for specific operations. Cancel
// checkout needs AllowLocked; refresh needs AllowExpired.
type Options struct {
	AllowLocked  bool
	AllowExpired bool
}

// Option configures the manager.
type Option func(*Manager)

// WithClock overrides the time source, used by tests.
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// NewManager builds a manager over the given store and lock table.
func NewManager(store *cartstore.Store, locks *cartstore.Locks, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		locks: locks,
		clock: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Now returns the manager's current time.
func (m *Manager) Now() time.Time {
	return m.clock()
}

// Insert stores a freshly created cart. No lock is needed: the id is new and
// unshared.
func (m *Manager) Insert(cart *domain.Cart) {
	m.store.Put(cart)
}

// Read returns a copy of the cart without taking the mutation lock. The
// caller sees lifecycle state as of now but must not write the copy back.
func (m *Manager) Read(id string) (*domain.Cart, error) {
	cart, ok := m.store.Get(id)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	return cart, nil
}

// WithCart runs fn while holding the cart's mutex. The cart passed to fn is
// a private copy; it is committed back only when fn succeeds. State gates
// are re-checked under the lock, so decisions made from stale reads cannot
// bypass them.
func (m *Manager) WithCart(ctx context.Context, id string, opts Options, fn func(cart *domain.Cart, now time.Time) error) (*domain.Cart, error) {
	release := m.locks.Acquire(id)
	defer release()

	if err := ctx.Err(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "context cancelled")
	}

	cart, ok := m.store.Get(id)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}

	now := m.clock()

	// An expired checkout lock is already cancelled; clear it before gating.
	if cart.CheckoutLock != nil && !cart.LockActive(now) {
		cart.CheckoutLock = nil
	}

	if cart.LockActive(now) && !opts.AllowLocked {
		return nil, pkgerrors.New(pkgerrors.CodeLocked, "cart is locked for checkout").
			WithDetails(map[string]any{"lockedUntil": cart.CheckoutLock.LockedUntil})
	}
	if cart.IsExpired(now) && !opts.AllowExpired {
		return nil, pkgerrors.New(pkgerrors.CodeExpired, "cart has expired").
			WithDetails(map[string]any{"expiresAt": cart.ExpiresAt})
	}

	if err := fn(cart, now); err != nil {
		return nil, err
	}

	cart.UpdatedAt = now
	m.store.Put(cart)
	return cart, nil
}

// Remove deletes the cart under its mutex after the guard approves. The
// guard sees the same lifecycle-normalized view WithCart provides.
func (m *Manager) Remove(ctx context.Context, id string, guard func(cart *domain.Cart, now time.Time) error) (*domain.Cart, error) {
	release := m.locks.Acquire(id)
	defer release()

	cart, ok := m.store.Get(id)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}

	now := m.clock()
	if cart.CheckoutLock != nil && !cart.LockActive(now) {
		cart.CheckoutLock = nil
	}

	if guard != nil {
		if err := guard(cart, now); err != nil {
			return nil, err
		}
	}

	m.store.Delete(id)
	return cart, nil
}
