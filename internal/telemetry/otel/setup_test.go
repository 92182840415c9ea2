package otel

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestCollectorTarget(t *testing.T) {
	cases := []struct {
		name         string
		endpoint     string
		override     bool
		wantTarget   string
		wantInsecure bool
		wantErr      bool
	}{
		{name: "plain host port", endpoint: "localhost:4317", wantTarget: "localhost:4317", wantInsecure: true},
		{name: "http scheme", endpoint: "http://collector:4317", wantTarget: "collector:4317", wantInsecure: true},
		{name: "https scheme", endpoint: "https://collector:4317", wantTarget: "collector:4317", wantInsecure: false},
		{name: "https with override", endpoint: "https://collector:4317", override: true, wantTarget: "collector:4317", wantInsecure: true},
		{name: "path dropped", endpoint: "http://collector:4317/v1/traces", wantTarget: "collector:4317", wantInsecure: true},
		{name: "missing host", endpoint: "http://", wantErr: true},
		{name: "garbage", endpoint: "http://[invalid", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target, insecure, err := collectorTarget(tc.endpoint, tc.override)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("collectorTarget(%q) expected error, got target %q", tc.endpoint, target)
				}
				return
			}
			if err != nil {
				t.Fatalf("collectorTarget(%q): %v", tc.endpoint, err)
			}
			if target != tc.wantTarget {
				t.Errorf("target = %q, want %q", target, tc.wantTarget)
			}
			if insecure != tc.wantInsecure {
				t.Errorf("insecure = %v, want %v", insecure, tc.wantInsecure)
			}
		})
	}
}

func TestNewProviders_EmptyEndpointIsNoop(t *testing.T) {
	ctx := context.Background()
	for _, endpoint := range []string{"", "   "} {
		providers, err := NewProviders(ctx, endpoint, "test-service", false)
		if err != nil {
			t.Fatalf("NewProviders(%q): %v", endpoint, err)
		}
		if providers.TracerProvider == nil || providers.MeterProvider == nil || providers.LoggerProvider == nil {
			t.Fatalf("NewProviders(%q) returned nil provider", endpoint)
		}
		if err := providers.Shutdown(ctx); err != nil {
			t.Errorf("no-op shutdown: %v", err)
		}
		if err := providers.Shutdown(ctx); err != nil {
			t.Errorf("repeated shutdown: %v", err)
		}
	}
}

func TestNewProviders_InvalidEndpoint(t *testing.T) {
	if _, err := NewProviders(context.Background(), "http://", "test-service", false); err == nil {
		t.Fatal("expected error for endpoint without host")
	}
}

func TestSetGlobal(t *testing.T) {
	providers, err := NewProviders(context.Background(), "", "test-service", false)
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}

	prevTracer := otel.GetTracerProvider()
	prevMeter := otel.GetMeterProvider()
	defer func() {
		otel.SetTracerProvider(prevTracer)
		otel.SetMeterProvider(prevMeter)
	}()

	providers.SetGlobal()

	if otel.GetTracerProvider() == prevTracer {
		t.Error("global tracer provider not replaced")
	}
	if otel.GetMeterProvider() == prevMeter {
		t.Error("global meter provider not replaced")
	}
}

func TestSetGlobal_NilFieldsDoNotPanic(t *testing.T) {
	p := &Providers{}
	p.SetGlobal()
}
