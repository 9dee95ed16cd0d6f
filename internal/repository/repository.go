package repository

import (
	"context"

	"github.com/utafrali/techstore/internal/domain"
)

// CartRepository defines the interface for cart persistence operations.
type CartRepository interface {
	// Get retrieves the cart stored for a session. A missing or expired cart
	// is reported as apperrors.ErrNotFound.
	Get(ctx context.Context, sessionID string) (domain.Cart, error)

	// SaveIfVersion persists cart with Version set to expectedVersion+1, but
	// only if the stored cart still has expectedVersion (or, for version 0,
	// no cart is stored). It reports false when another writer got there first.
	SaveIfVersion(ctx context.Context, cart domain.Cart, expectedVersion int) (bool, error)

	// Delete removes the cart for a session. Deleting a missing cart is not an error.
	Delete(ctx context.Context, sessionID string) error
}

// ProductRepository is a read-only catalog source.
type ProductRepository interface {
	// List returns every product in catalog order.
	List(ctx context.Context) ([]domain.Product, error)
}
