package telemetry_test

import (
	"context"
	"testing"

	"github.com/vango-dev/bindvar/internal/config"
	"github.com/vango-dev/bindvar/internal/telemetry"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestSetup_NoopWhenDisabled(t *testing.T) {
	tp, shutdown, err := telemetry.Setup(context.Background(), config.TracingConfig{
		Enabled:  false,
		Endpoint: "192.0.2.1:4318",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := tp.(*sdktrace.TracerProvider); ok {
		t.Fatal("expected a no-op provider when tracing is disabled")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	_, shutdown, err := telemetry.Setup(context.Background(), config.TracingConfig{Enabled: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_CreatesProviderWhenEnabled(t *testing.T) {
	// Use a non-routable address so no actual export happens.
	tp, shutdown, err := telemetry.Setup(context.Background(), config.TracingConfig{
		Enabled:     true,
		Endpoint:    "192.0.2.1:4318",
		Insecure:    true,
		ServiceName: "test-service",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := tp.(*sdktrace.TracerProvider); !ok {
		t.Fatalf("expected an SDK provider, got %T", tp)
	}
	// Shutdown should return cleanly even though the endpoint is unreachable.
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}
