package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/shopfront/store-api/internal/core/domain"
)

// RequireRoles enforces role-based access control on an authenticated
// request. An empty role set admits any authenticated caller.
func RequireRoles(roles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return domain.ErrUnauthorized
			}
			if len(allowed) > 0 {
				if _, ok := allowed[id.Role]; !ok {
					return domain.ErrForbidden
				}
			}
			return next(c)
		}
	}
}
