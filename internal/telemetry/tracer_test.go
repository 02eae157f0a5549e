package telemetry

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

func TestNewProvider_Disabled(t *testing.T) {
	cfg := Config{
		Enabled:      false,
		ServiceName:  "vyla",
		ExporterType: ExporterGRPC,
	}

	provider, err := NewProvider(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if provider.Enabled() {
		t.Error("Expected noop provider")
	}

	_, span := otel.Tracer("test").Start(context.Background(), "noop-check")
	if span.IsRecording() {
		t.Error("Expected noop tracer span to be non-recording")
	}
	span.End()
}

func TestNewProvider_InvalidExporter(t *testing.T) {
	cfg := Config{
		Enabled:      true,
		ServiceName:  "vyla",
		ExporterType: "invalid",
	}

	_, err := NewProvider(context.Background(), cfg)
	if err == nil {
		t.Fatal("Expected error for invalid exporter type")
	}

	expectedMsg := "unsupported exporter type: invalid (supported: grpc, http)"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestNewProvider_HTTPExporter(t *testing.T) {
	cfg := Config{
		Enabled:        true,
		ServiceName:    "vyla",
		ServiceVersion: "v1.0.0",
		Environment:    "test",
		ExporterType:   ExporterHTTP,
		Endpoint:       "127.0.0.1:4318",
		SamplingRate:   0.5,
	}

	provider, err := NewProvider(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !provider.Enabled() {
		t.Fatal("Expected an exporting provider")
	}
	t.Cleanup(func() { _, _ = NewProvider(context.Background(), Config{}) })

	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("Expected clean shutdown with no spans, got: %v", err)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		want string
	}{
		{name: "always sample", rate: 1.0, want: "AlwaysOnSampler"},
		{name: "above one", rate: 3, want: "AlwaysOnSampler"},
		{name: "never sample", rate: 0.0, want: "AlwaysOffSampler"},
		{name: "negative", rate: -1, want: "AlwaysOffSampler"},
		{name: "ratio sample", rate: 0.25, want: "TraceIDRatioBased"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sampler(tt.rate).Description()
			if !strings.HasPrefix(got, tt.want) {
				t.Errorf("sampler(%v) = %q, want prefix %q", tt.rate, got, tt.want)
			}
		})
	}
}

func TestProvider_Shutdown(t *testing.T) {
	var nilProvider *Provider
	if err := nilProvider.Shutdown(context.Background()); err != nil {
		t.Errorf("Expected no error on nil provider shutdown, got: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	provider := &Provider{}
	if err := provider.Shutdown(ctx); err != nil {
		t.Errorf("Expected no error on noop shutdown with canceled context, got: %v", err)
	}
}

func TestTracer(t *testing.T) {
	if _, err := NewProvider(context.Background(), Config{ServiceName: "vyla"}); err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	ctx, span := Tracer("test-tracer").Start(context.Background(), "test-span")
	defer span.End()

	if trace.SpanFromContext(ctx) == nil {
		t.Error("Expected span in context")
	}
}

func TestProvider_ConcurrentShutdown(t *testing.T) {
	provider := &Provider{}

	done := make(chan struct{}, 5)
	for range 5 {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			_ = provider.Shutdown(ctx)
			done <- struct{}{}
		}()
	}
	for range 5 {
		<-done
	}
}
