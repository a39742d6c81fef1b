package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/shopfront/store-api/internal/core/domain"
	"github.com/shopfront/store-api/internal/core/ports"
	"github.com/shopfront/store-api/pkg/logger"
)

// Authenticate verifies the bearer token and attaches its identity to both the
// echo context and the request context. Every verification failure is
// reported as domain.ErrUnauthorized; the precise reason is only logged.
func Authenticate(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return domain.ErrMissingToken
			}

			id, err := verifier.Verify(token)
			if err != nil {
				log := logger.FromContext(c.Request().Context())
				log.Debug().Err(err).Msg("token rejected")
				return domain.ErrUnauthorized
			}

			SetIdentity(c, id)
			return next(c)
		}
	}
}

// Authorize authenticates the caller and, when roles is non-empty, requires
// the caller's role to be one of them.
func Authorize(verifier ports.TokenVerifier, roles ...domain.Role) echo.MiddlewareFunc {
	authn := Authenticate(verifier)
	authz := RequireRoles(roles...)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return authn(authz(next))
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
