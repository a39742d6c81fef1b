package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const strongSecret = "0123456789abcdef0123456789abcdef"

func load(t *testing.T, env map[string]string) (*Config, error) {
	t.Helper()
	return LoadFrom(context.Background(), envconfig.MapLookuper(env))
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(t, map[string]string{"JWT_SECRET": "dev"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" || cfg.Env != "development" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected server defaults: %+v", cfg)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour || cfg.Auth.AllowAdminSignup {
		t.Fatalf("unexpected auth defaults: %+v", cfg.Auth)
	}
	if cfg.Checkout.StepTimeout != 5*time.Second || cfg.Checkout.LockTTL != 30*time.Second {
		t.Fatalf("unexpected checkout defaults: %+v", cfg.Checkout)
	}
	if cfg.Notifier.Kind != "log" || cfg.Mongo.Database != "store" || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected infrastructure defaults: %+v", cfg)
	}
	if cfg.Tracing.Endpoint != "" {
		t.Fatalf("tracing must be off by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := load(t, map[string]string{
		"ENV":                   "production",
		"JWT_SECRET":            strongSecret,
		"TOKEN_TTL":             "15m",
		"ALLOW_ADMIN_SIGNUP":    "true",
		"CHECKOUT_STEP_TIMEOUT": "2s",
		"CHECKOUT_LOCK_TTL":     "20s",
		"NOTIFIER":              "smtp",
		"SMTP_HOST":             "mail.internal",
		"SMTP_PORT":             "2525",
		"REDIS_DB":              "3",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Auth.TokenTTL != 15*time.Minute || !cfg.Auth.AllowAdminSignup {
		t.Fatalf("auth overrides not applied: %+v", cfg.Auth)
	}
	if cfg.Checkout.StepTimeout != 2*time.Second || cfg.Checkout.LockTTL != 20*time.Second {
		t.Fatalf("checkout overrides not applied: %+v", cfg.Checkout)
	}
	if cfg.Notifier.SMTP.Host != "mail.internal" || cfg.Notifier.SMTP.Port != 2525 {
		t.Fatalf("smtp overrides not applied: %+v", cfg.Notifier.SMTP)
	}
	if cfg.Redis.DB != 3 || cfg.IsDevelopment() {
		t.Fatalf("unexpected: %+v", cfg)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{}, "JWT_SECRET"},
		{"short secret in production", map[string]string{"ENV": "production", "JWT_SECRET": "short"}, "at least 32 bytes"},
		{"lock shorter than steps", map[string]string{"JWT_SECRET": "dev", "CHECKOUT_LOCK_TTL": "5s"}, "CHECKOUT_LOCK_TTL"},
		{"unknown notifier", map[string]string{"JWT_SECRET": "dev", "NOTIFIER": "pigeon"}, "NOTIFIER"},
		{"smtp without host", map[string]string{"JWT_SECRET": "dev", "NOTIFIER": "smtp"}, "SMTP_HOST"},
		{"admin handle without secret", map[string]string{"JWT_SECRET": "dev", "ADMIN_HANDLE": "root"}, "ADMIN_SECRET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(t, tt.env)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
