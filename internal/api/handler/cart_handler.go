package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shopfront/store-api/internal/api/metrics"
	"github.com/shopfront/store-api/internal/core/domain"
	"github.com/shopfront/store-api/internal/core/ports"
)

// CartHandler handles HTTP requests for the caller's cart.
type CartHandler struct {
	service ports.CartService
}

func NewCartHandler(service ports.CartService) *CartHandler {
	return &CartHandler{service: service}
}

// Get handles GET /cart.
//
// @Summary      Get the caller's cart
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  cartResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /cart [get]
func (h *CartHandler) Get(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}

	cart, err := h.service.GetCart(c.Request().Context(), id.SubjectID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(cart))
}

// AddItem handles POST /cart.
//
// @Summary      Add a product to the caller's cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      addItemRequest  true  "Product, quantity and unit price"
// @Success      200   {object}  cartResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /cart [post]
func (h *CartHandler) AddItem(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var req addItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.UnitPrice == nil {
		return errInvalidPayload
	}

	cart, err := h.service.AddItem(c.Request().Context(), ports.AddItemInput{
		UserID:    id.SubjectID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		UnitPrice: *req.UnitPrice,
	})
	if err != nil {
		metrics.CartMutationsTotal.WithLabelValues("add_item", "error").Inc()
		return err
	}

	metrics.CartMutationsTotal.WithLabelValues("add_item", "ok").Inc()
	return c.JSON(http.StatusOK, toCartResponse(cart))
}

// RemoveItem handles DELETE /cart.
//
// @Summary      Remove a product from the caller's cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      removeItemRequest  true  "Product to remove"
// @Success      200   {object}  cartResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /cart [delete]
func (h *CartHandler) RemoveItem(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var req removeItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	cart, found, err := h.service.RemoveItem(c.Request().Context(), id.SubjectID, req.ProductID)
	if err != nil {
		metrics.CartMutationsTotal.WithLabelValues("remove_item", "error").Inc()
		return err
	}
	if !found {
		metrics.CartMutationsTotal.WithLabelValues("remove_item", "not_found").Inc()
		return domain.ErrItemNotFound
	}

	metrics.CartMutationsTotal.WithLabelValues("remove_item", "ok").Inc()
	return c.JSON(http.StatusOK, toCartResponse(cart))
}

// Delete handles DELETE /cart/:userId. Users may only delete their own cart;
// admins may delete any.
//
// @Summary      Delete a user's cart
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string  true  "Owner of the cart"
// @Success      200     {object}  cartResponse
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /cart/{userId} [delete]
func (h *CartHandler) Delete(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}

	owner := c.Param("userId")
	if owner == "" {
		return errInvalidPayload
	}
	if id.Role != domain.RoleAdmin && owner != id.SubjectID {
		return domain.ErrForbidden
	}

	cart, found, err := h.service.DeleteCart(c.Request().Context(), owner)
	if err != nil {
		metrics.CartMutationsTotal.WithLabelValues("delete_cart", "error").Inc()
		return err
	}
	if !found {
		metrics.CartMutationsTotal.WithLabelValues("delete_cart", "not_found").Inc()
		return domain.ErrCartNotFound
	}

	metrics.CartMutationsTotal.WithLabelValues("delete_cart", "ok").Inc()
	return c.JSON(http.StatusOK, toCartResponse(cart))
}
