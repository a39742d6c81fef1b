package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/shopfront/store-api/internal/api/middleware"
	"github.com/shopfront/store-api/internal/core/domain"
)

// callerIdentity returns the identity injected by the Authorize middleware.
// Its absence means the route was registered without the middleware.
func callerIdentity(c echo.Context) (domain.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok || id.SubjectID == "" {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	return id, nil
}

// bindAndValidate decodes the request into req and runs the struct validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errInvalidPayload
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(req)
}
