package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/shopfront/store-api/internal/api"
	"github.com/shopfront/store-api/internal/api/handler"
	"github.com/shopfront/store-api/internal/core/ports"
	"github.com/shopfront/store-api/internal/core/service"
	"github.com/shopfront/store-api/internal/infrastructure/config"
	mongostore "github.com/shopfront/store-api/internal/infrastructure/db/mongo"
	redisstore "github.com/shopfront/store-api/internal/infrastructure/db/redis"
	"github.com/shopfront/store-api/internal/infrastructure/notify"
	"github.com/shopfront/store-api/internal/infrastructure/telemetry"
	"github.com/shopfront/store-api/pkg/logger"
)

const (
	serviceName     = "store-api"
	shutdownTimeout = 15 * time.Second
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
		Env:     cfg.Env,
	})

	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     version,
		Environment: cfg.Env,
	})
	if err != nil {
		return err
	}
	defer flush(log, "tracing", shutdownTracing)

	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return err
	}
	defer flush(log, "mongo", mongoClient.Disconnect)

	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	notifier, closeNotifier, err := newNotifier(cfg.Notifier, log)
	if err != nil {
		return err
	}
	defer closeNotifier()

	// --- Core services ---
	users := mongostore.NewUserRepository(db)
	tokens := service.NewTokenService(service.TokenConfig{
		Secret: cfg.Auth.JWTSecret,
		TTL:    cfg.Auth.TokenTTL,
		Issuer: cfg.Auth.TokenIssuer,
	})
	authService := service.NewAuthService(users, tokens,
		service.WithAdminSignup(cfg.Auth.AllowAdminSignup),
		service.WithAuthLogger(log.With().Str("component", "auth").Logger()),
	)
	cartService := service.NewCartService(
		mongostore.NewCartRepository(db),
		log.With().Str("component", "cart").Logger(),
	)
	checkoutService := service.NewCheckoutService(
		cartService,
		users,
		notifier,
		redisstore.NewLocker(rdb),
		service.CheckoutConfig{
			StepTimeout: cfg.Checkout.StepTimeout,
			LockTTL:     cfg.Checkout.LockTTL,
		},
		log.With().Str("component", "checkout").Logger(),
	)

	if cfg.Auth.AdminHandle != "" {
		if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminHandle, cfg.Auth.AdminSecret, cfg.Auth.AdminEmail); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}

	e := api.NewRouter(api.Deps{
		Auth:     authService,
		Tokens:   tokens,
		Carts:    cartService,
		Checkout: checkoutService,
		Readiness: map[string]handler.Pinger{
			"mongodb": handler.MongoPinger(db),
			"redis":   handler.RedisPinger(rdb),
		},
		Log: log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newNotifier builds the order-confirmation channel selected by cfg.Kind.
func newNotifier(cfg config.NotifierConfig, log zerolog.Logger) (ports.Notifier, func(), error) {
	switch cfg.Kind {
	case "smtp":
		return notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}), func() {}, nil
	case "amqp":
		n, err := notify.NewAMQPNotifier(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.RoutingKey)
		if err != nil {
			return nil, nil, err
		}
		return n, func() {
			if err := n.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close amqp notifier")
			}
		}, nil
	default:
		return notify.NewLogNotifier(log.With().Str("component", "notifier").Logger()), func() {}, nil
	}
}

func flush(log zerolog.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Warn().Err(err).Str("dependency", name).Msg("shutdown failed")
	}
}
