package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/shopfront/store-api/docs"
	"github.com/shopfront/store-api/internal/api/handler"
	"github.com/shopfront/store-api/internal/api/middleware"
	"github.com/shopfront/store-api/internal/core/domain"
	"github.com/shopfront/store-api/internal/core/ports"
	"github.com/shopfront/store-api/pkg/logger"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Auth     ports.AuthService
	Tokens   ports.TokenVerifier
	Carts    ports.CartService
	Checkout ports.CheckoutService
	// Readiness lists the dependencies probed by /health/ready.
	Readiness map[string]handler.Pinger
	Log       zerolog.Logger
	// Registry receives the HTTP metrics and serves /metrics. The default
	// Prometheus registry is used when nil.
	Registry *prometheus.Registry
}

// route is one entry of the route table. Public routes skip authentication;
// the others require a valid token and, when roles is non-empty, one of roles.
type route struct {
	method  string
	path    string
	handler echo.HandlerFunc
	public  bool
	roles   []domain.Role
}

var (
	anyRole   []domain.Role
	userOnly  = []domain.Role{domain.RoleUser}
	adminOnly = []domain.Role{domain.RoleAdmin}
	userAdmin = []domain.Role{domain.RoleUser, domain.RoleAdmin}
)

func routes(d Deps) []route {
	authHandler := handler.NewAuthHandler(d.Auth)
	cartHandler := handler.NewCartHandler(d.Carts)
	checkoutHandler := handler.NewCheckoutHandler(d.Checkout)
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Readiness)

	return []route{
		// --- Auth ---
		{method: http.MethodPost, path: "/auth/register", handler: authHandler.Register, public: true},
		{method: http.MethodPost, path: "/auth/login", handler: authHandler.Login, public: true},
		{method: http.MethodGet, path: "/auth/user", handler: authHandler.Me, roles: anyRole},
		{method: http.MethodGet, path: "/auth/admin", handler: authHandler.AdminDashboard, roles: adminOnly},

		// --- Cart ---
		{method: http.MethodGet, path: "/cart", handler: cartHandler.Get, roles: userOnly},
		{method: http.MethodPost, path: "/cart", handler: cartHandler.AddItem, roles: userOnly},
		{method: http.MethodDelete, path: "/cart", handler: cartHandler.RemoveItem, roles: userOnly},
		{method: http.MethodDelete, path: "/cart/:userId", handler: cartHandler.Delete, roles: userAdmin},
		{method: http.MethodPost, path: "/cart/checkout", handler: checkoutHandler.Checkout, roles: userOnly},

		// --- Health probes (no auth required) ---
		{method: http.MethodGet, path: "/health", handler: healthHandler.Liveness, public: true},
		{method: http.MethodGet, path: "/health/ready", handler: readinessHandler.Readiness, public: true},
	}
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	authz := func(roles []domain.Role) echo.MiddlewareFunc {
		return middleware.Authorize(d.Tokens, roles...)
	}
	for _, r := range routes(d) {
		if r.public {
			e.Add(r.method, r.path, r.handler)
			continue
		}
		e.Add(r.method, r.path, r.handler, authz(r.roles))
	}

	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog event per request and stores a
// request-scoped logger in the request context.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	attach := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqLog := log.With().
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Logger()
			c.SetRequest(c.Request().WithContext(logger.WithContext(c.Request().Context(), reqLog)))
			return next(c)
		}
	}

	access := echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return access(attach(next))
	}
}
