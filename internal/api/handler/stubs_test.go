package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/shopfront/store-api/internal/api/middleware"
	"github.com/shopfront/store-api/internal/core/domain"
	"github.com/shopfront/store-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, handle, secret string) (string, *domain.User, error)
	profileFn  func(ctx context.Context, userID string) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, handle, secret string) (string, *domain.User, error) {
	return s.loginFn(ctx, handle, secret)
}

func (s *stubAuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.profileFn(ctx, userID)
}

type stubCartService struct {
	getFn    func(ctx context.Context, userID string) (*domain.Cart, error)
	addFn    func(ctx context.Context, in ports.AddItemInput) (*domain.Cart, error)
	removeFn func(ctx context.Context, userID, productID string) (*domain.Cart, bool, error)
	deleteFn func(ctx context.Context, userID string) (*domain.Cart, bool, error)
}

func (s *stubCartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	return s.getFn(ctx, userID)
}

func (s *stubCartService) AddItem(ctx context.Context, in ports.AddItemInput) (*domain.Cart, error) {
	return s.addFn(ctx, in)
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, bool, error) {
	return s.removeFn(ctx, userID, productID)
}

func (s *stubCartService) ClearCart(context.Context, string) error { return nil }

func (s *stubCartService) ClearCheckedOut(context.Context, string, *domain.Cart) error { return nil }

func (s *stubCartService) DeleteCart(ctx context.Context, userID string) (*domain.Cart, bool, error) {
	return s.deleteFn(ctx, userID)
}

func (s *stubCartService) CalculateTotalPrice(cart *domain.Cart) decimal.Decimal {
	return cart.Total()
}

type stubCheckoutService struct {
	fn func(ctx context.Context, userID string) (*domain.CheckoutResult, error)
}

func (s *stubCheckoutService) ProcessCheckout(ctx context.Context, userID string) (*domain.CheckoutResult, error) {
	return s.fn(ctx, userID)
}

// newJSONContext builds an echo context for a JSON request. A non-empty
// identity is attached as if the Authorize middleware had run.
func newJSONContext(method, target, body string, id domain.Identity) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if id.SubjectID != "" {
		middleware.SetIdentity(c, id)
	}
	return c, rec
}

var (
	userAlice = domain.Identity{SubjectID: "u1", Role: domain.RoleUser}
	adminRoot = domain.Identity{SubjectID: "a1", Role: domain.RoleAdmin}
)

func cartWith(userID string, items ...domain.LineItem) *domain.Cart {
	c := domain.NewCart(userID)
	c.Items = append(c.Items, items...)
	return c
}

func line(productID string, qty int, price string) domain.LineItem {
	return domain.LineItem{ProductID: productID, Quantity: qty, UnitPrice: decimal.RequireFromString(price)}
}
