package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/shopfront/store-api/internal/core/domain"
)

func TestReadiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		deps       map[string]Pinger
		wantStatus int
		wantBody   string
	}{
		{"all healthy", map[string]Pinger{"mongodb": ok, "redis": ok}, http.StatusOK, "ok"},
		{"redis down", map[string]Pinger{"mongodb": ok, "redis": down}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newJSONContext(http.MethodGet, "/health/ready", "", domain.Identity{})
			if err := NewReadinessHandler(tt.deps).Readiness(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}

			var resp readinessResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Status != tt.wantBody || len(resp.Dependencies) != len(tt.deps) {
				t.Fatalf("unexpected body: %+v", resp)
			}
		})
	}
}
