package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/shopfront/store-api/internal/core/domain"
)

// AddItemInput is a request to put quantity units of a product in a cart.
type AddItemInput struct {
	UserID    string
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

// CartService mutates and queries a user's cart. RemoveItem and DeleteCart
// report an absent cart or item through the boolean result, not an error.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, in AddItemInput) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, bool, error)
	ClearCart(ctx context.Context, userID string) error
	ClearCheckedOut(ctx context.Context, userID string, checkedOut *domain.Cart) error
	DeleteCart(ctx context.Context, userID string) (*domain.Cart, bool, error)
	CalculateTotalPrice(cart *domain.Cart) decimal.Decimal
}

// CheckoutService runs the checkout pipeline for a user.
type CheckoutService interface {
	ProcessCheckout(ctx context.Context, userID string) (*domain.CheckoutResult, error)
}
