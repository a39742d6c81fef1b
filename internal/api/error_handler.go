package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/shopfront/store-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type errorMapping struct {
	target error
	status int
	code   string
	// message overrides err.Error() when set.
	message string
}

// errorTable is checked in order; specific errors precede the category they
// wrap. Checkout failures come first because they wrap arbitrary causes.
var errorTable = []errorMapping{
	{domain.ErrNotificationFailed, http.StatusInternalServerError, "notification_failed", "order notification failed, cart kept"},
	{domain.ErrDependencyUnavailable, http.StatusServiceUnavailable, "dependency_unavailable", "service temporarily unavailable"},

	{domain.ErrMissingToken, http.StatusUnauthorized, "missing_token", "missing bearer token"},
	{domain.ErrBadCredentials, http.StatusUnauthorized, "invalid_credentials", "invalid credentials"},
	{domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "unauthorized"},
	{domain.ErrForbidden, http.StatusForbidden, "forbidden", "access forbidden"},

	{domain.ErrEmptyCart, http.StatusNotFound, "empty_cart", ""},
	{domain.ErrUserNotFound, http.StatusNotFound, "user_not_found", "user not found"},
	{domain.ErrCartNotFound, http.StatusNotFound, "cart_not_found", "cart not found"},
	{domain.ErrItemNotFound, http.StatusNotFound, "item_not_found", "item not in cart"},
	{domain.ErrNotFound, http.StatusNotFound, "not_found", "not found"},

	{domain.ErrDuplicateHandle, http.StatusConflict, "duplicate_handle", "handle already registered"},
	{domain.ErrCheckoutInProgress, http.StatusConflict, "checkout_in_progress", "checkout already in progress"},
	{domain.ErrCartContention, http.StatusConflict, "cart_contention", "cart was modified concurrently, retry"},
	{domain.ErrConflict, http.StatusConflict, "conflict", "conflict"},

	{domain.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity", ""},
	{domain.ErrInvalidPrice, http.StatusBadRequest, "invalid_price", ""},
	{domain.ErrInvalidInput, http.StatusBadRequest, "invalid_input", ""},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>", "code": "<code>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{
			Error: fmt.Sprintf("%v", he.Message),
			Code:  codeForStatus(he.Code),
		}
	}

	for _, m := range errorTable {
		if !errors.Is(err, m.target) {
			continue
		}
		msg := m.message
		if msg == "" {
			msg = err.Error()
		}
		if m.status >= http.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("code", m.code).
				Msg("request failed")
		}
		return m.status, errorResponse{Error: msg, Code: m.code}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error", Code: "internal"}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_input"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusRequestEntityTooLarge:
		return "payload_too_large"
	case http.StatusTooManyRequests:
		return "rate_limited"
	}
	if status >= http.StatusInternalServerError {
		return "internal"
	}
	return "error"
}
