package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/shopfront/store-api/internal/core/domain"
	"github.com/shopfront/store-api/internal/core/ports"
)

// CartService mutates and queries carts through single-document operations.
type CartService struct {
	repo ports.CartRepository
	log  zerolog.Logger
}

func NewCartService(repo ports.CartRepository, log zerolog.Logger) *CartService {
	return &CartService{repo: repo, log: log}
}

// GetCart returns the user's cart, or an empty one if none has been created.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.repo.FindByUser(ctx, userID)
	if errors.Is(err, domain.ErrCartNotFound) {
		return domain.NewCart(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem upserts the cart and adds quantity units of the product. An
// existing line keeps the price it was first added at.
func (s *CartService) AddItem(ctx context.Context, in ports.AddItemInput) (*domain.Cart, error) {
	if in.Quantity < 1 || in.Quantity > domain.MaxLineQuantity {
		return nil, domain.ErrInvalidQuantity
	}
	if err := domain.ValidatePrice(in.UnitPrice); err != nil {
		return nil, err
	}

	cart, err := s.repo.Mutate(ctx, in.UserID, true, func(c *domain.Cart) error {
		return c.AddItem(in.ProductID, in.Quantity, in.UnitPrice)
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("user_id", in.UserID).
		Str("product_id", in.ProductID).
		Int("quantity", in.Quantity).
		Msg("item added to cart")
	return cart, nil
}

// RemoveItem drops the product's line. found is false when there is no cart
// or the product is not in it.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, bool, error) {
	cart, err := s.repo.Mutate(ctx, userID, false, func(c *domain.Cart) error {
		return c.RemoveItem(productID)
	})
	if errors.Is(err, domain.ErrCartNotFound) || errors.Is(err, domain.ErrItemNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return cart, true, nil
}

// ClearCart empties the cart but keeps the document. A missing cart is left
// missing.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	_, err := s.repo.Mutate(ctx, userID, false, func(c *domain.Cart) error {
		c.Clear()
		return nil
	})
	if errors.Is(err, domain.ErrCartNotFound) {
		return nil
	}
	return err
}

// ClearCheckedOut removes what checkedOut held from the user's cart. Items
// added or increased after checkedOut was loaded are kept.
func (s *CartService) ClearCheckedOut(ctx context.Context, userID string, checkedOut *domain.Cart) error {
	_, err := s.repo.Mutate(ctx, userID, false, func(c *domain.Cart) error {
		c.Subtract(checkedOut)
		return nil
	})
	if errors.Is(err, domain.ErrCartNotFound) {
		return nil
	}
	return err
}

// DeleteCart removes the cart document and returns what it held.
func (s *CartService) DeleteCart(ctx context.Context, userID string) (*domain.Cart, bool, error) {
	cart, err := s.repo.Delete(ctx, userID)
	if errors.Is(err, domain.ErrCartNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	s.log.Info().Str("user_id", userID).Msg("cart deleted")
	return cart, true, nil
}

func (s *CartService) CalculateTotalPrice(cart *domain.Cart) decimal.Decimal {
	if cart == nil {
		return decimal.Zero
	}
	return cart.Total()
}
