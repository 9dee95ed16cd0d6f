package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/utafrali/techstore/internal/domain"
	apperrors "github.com/utafrali/techstore/pkg/errors"
)

type entry struct {
	cart      domain.Cart
	expiresAt time.Time
}

// CartRepository is an in-process repository.CartRepository for single
// instance deployments and local development. Carts expire ttl after their
// last write.
type CartRepository struct {
	mu    sync.Mutex
	carts map[string]entry
	ttl   time.Duration
	now   func() time.Time
}

// NewCartRepository creates an empty in-memory cart repository.
func NewCartRepository(ttl time.Duration) *CartRepository {
	return &CartRepository{
		carts: make(map[string]entry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// copyCart detaches the item slice so callers never share backing arrays
// with the store.
func copyCart(c domain.Cart) domain.Cart {
	c.Items = slices.Clone(c.Items)
	if c.Items == nil {
		c.Items = []domain.CartItem{}
	}
	return c
}

// lookup returns the live entry for sessionID, evicting it if expired.
// Callers must hold r.mu.
func (r *CartRepository) lookup(sessionID string) (entry, bool) {
	e, ok := r.carts[sessionID]
	if !ok {
		return entry{}, false
	}
	if !r.now().Before(e.expiresAt) {
		delete(r.carts, sessionID)
		return entry{}, false
	}
	return e, true
}

func (r *CartRepository) put(cart domain.Cart) {
	r.carts[cart.SessionID] = entry{cart: copyCart(cart), expiresAt: r.now().Add(r.ttl)}
}

// Get returns the stored cart for sessionID.
func (r *CartRepository) Get(_ context.Context, sessionID string) (domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.lookup(sessionID)
	if !ok {
		return domain.Cart{}, apperrors.NotFound("cart", sessionID)
	}
	return copyCart(e.cart), nil
}

// SaveIfVersion stores cart as version expectedVersion+1 if the stored
// version still equals expectedVersion.
func (r *CartRepository) SaveIfVersion(_ context.Context, cart domain.Cart, expectedVersion int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := 0
	if e, ok := r.lookup(cart.SessionID); ok {
		current = e.cart.Version
	}
	if current != expectedVersion {
		return false, nil
	}

	cart.Version = expectedVersion + 1
	r.put(cart)
	return true, nil
}

// Delete removes the cart for sessionID.
func (r *CartRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, sessionID)
	return nil
}
