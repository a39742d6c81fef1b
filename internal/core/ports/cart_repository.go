package ports

import (
	"context"

	"github.com/shopfront/store-api/internal/core/domain"
)

// CartMutation changes a cart in memory. Returning an error aborts the write.
type CartMutation func(cart *domain.Cart) error

// CartRepository persists one cart document per user.
type CartRepository interface {
	// FindByUser returns domain.ErrCartNotFound when the user has no cart.
	FindByUser(ctx context.Context, userID string) (*domain.Cart, error)

	// Mutate loads the user's cart, applies fn and writes the result back only
	// if the document was not changed in between (compare-and-swap on the cart
	// version). When upsert is true a missing cart starts out empty; otherwise
	// domain.ErrCartNotFound is returned.
	Mutate(ctx context.Context, userID string, upsert bool, fn CartMutation) (*domain.Cart, error)

	// Delete removes the cart and returns its last state, or domain.ErrCartNotFound.
	Delete(ctx context.Context, userID string) (*domain.Cart, error)
}
