package observability

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/articlerec/internal/config"
)

func TestClampRatio(t *testing.T) {
	cases := map[float64]float64{-0.5: 0, 0: 0, 0.25: 0.25, 1: 1, 3: 1}
	for in, want := range cases {
		if got := clampRatio(in); got != want {
			t.Fatalf("clampRatio(%v): want=%v got=%v", in, want, got)
		}
	}
}

func TestOtelHeaders(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", " api-key = abc ,broken, =x,tenant=lab")
	want := map[string]string{"api-key": "abc", "tenant": "lab"}
	if diff := cmp.Diff(want, otelHeaders()); diff != "" {
		t.Fatalf("headers (-want +got):\n%s", diff)
	}

	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")
	if got := otelHeaders(); got != nil {
		t.Fatalf("empty env: want nil got=%v", got)
	}
}

func TestInitOTelDisabledIsNoop(t *testing.T) {
	shutdown := InitOTel(context.Background(), nil, config.OtelConfig{Enabled: false}, "test")
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if Tracer() == nil {
		t.Fatalf("Tracer must never be nil")
	}
}
