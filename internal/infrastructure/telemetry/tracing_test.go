package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

func TestInitWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{ServiceName: "store-api"})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestResourceAttributes(t *testing.T) {
	res := newResource(Config{ServiceName: "store-api", Environment: "test"})

	want := map[attribute.Key]string{
		semconv.ServiceNameKey:           "store-api",
		semconv.ServiceVersionKey:        "dev",
		semconv.DeploymentEnvironmentKey: "test",
	}
	for key, value := range want {
		got, ok := res.Set().Value(key)
		if !ok || got.AsString() != value {
			t.Fatalf("%s = %q, want %q", key, got.AsString(), value)
		}
	}
}
