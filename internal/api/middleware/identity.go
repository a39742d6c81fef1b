package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/shopfront/store-api/internal/core/domain"
)

const identityKey = "identity"

type identityCtxKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// IdentityFromContext returns the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(domain.Identity)
	return id, ok
}

// IdentityFrom returns the identity attached by Authenticate.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	id, ok := c.Get(identityKey).(domain.Identity)
	return id, ok
}

// SetIdentity attaches id to c and to its request context.
func SetIdentity(c echo.Context, id domain.Identity) {
	c.Set(identityKey, id)
	c.SetRequest(c.Request().WithContext(WithIdentity(c.Request().Context(), id)))
}
