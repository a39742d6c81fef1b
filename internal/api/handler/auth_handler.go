package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shopfront/store-api/internal/api/metrics"
	"github.com/shopfront/store-api/internal/core/domain"
	"github.com/shopfront/store-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Handle:         req.Handle,
		Secret:         req.Secret,
		ContactAddress: req.ContactAddress,
		Role:           role,
	})
	if err != nil {
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues(string(user.Role)).Inc()
	return c.JSON(http.StatusCreated, authResponse{User: toUserResponse(user)})
}

// Login authenticates a user and returns a signed token. Unknown handles and
// wrong secrets are indistinguishable to the caller.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Handle, req.Secret)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrBadCredentials) {
			metrics.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
			return domain.ErrBadCredentials
		}
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, authResponse{Token: token, User: toUserResponse(user)})
}

// Me returns the caller's identity and stored profile.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /auth/user [get]
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.authService.Profile(c.Request().Context(), id.SubjectID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profileResponse{
		UserID: id.SubjectID,
		Role:   string(id.Role),
		User:   toUserResponse(user),
	})
}

// AdminDashboard is reachable by admins only.
//
// @Summary      Admin dashboard
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  adminDashboardResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /auth/admin [get]
func (h *AuthHandler) AdminDashboard(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, adminDashboardResponse{
		Message: "Welcome to the admin dashboard",
		UserID:  id.SubjectID,
	})
}
