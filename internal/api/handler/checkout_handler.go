package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shopfront/store-api/internal/api/metrics"
	"github.com/shopfront/store-api/internal/core/domain"
	"github.com/shopfront/store-api/internal/core/ports"
)

// CheckoutHandler turns the caller's cart into an order confirmation.
type CheckoutHandler struct {
	service ports.CheckoutService
}

func NewCheckoutHandler(service ports.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// Checkout handles POST /cart/checkout.
//
// @Summary      Check out the caller's cart
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  checkoutResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /cart/checkout [post]
func (h *CheckoutHandler) Checkout(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := h.service.ProcessCheckout(c.Request().Context(), id.SubjectID)
	outcome := checkoutOutcome(err)
	metrics.CheckoutsTotal.WithLabelValues(outcome).Inc()
	metrics.CheckoutDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}

	metrics.CheckoutRevenueTotal.Add(result.Total.InexactFloat64())
	return c.JSON(http.StatusOK, toCheckoutResponse(result))
}

func checkoutOutcome(err error) string {
	switch {
	case err == nil:
		return "completed"
	case errors.Is(err, domain.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, domain.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, domain.ErrCheckoutInProgress):
		return "in_progress"
	case errors.Is(err, domain.ErrNotificationFailed):
		return "notification_failed"
	case errors.Is(err, domain.ErrDependencyUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
