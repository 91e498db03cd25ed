package tracing

import (
	"context"
	"errors"
	"testing"
)

func TestDisabledTracerIsNoop(t *testing.T) {
	tracer, err := New(context.Background(), &Config{Enabled: false})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if tracer.Enabled() {
		t.Error("Enabled() = true for disabled config")
	}

	ctx, span := tracer.StartRun(context.Background(), "req-1", "auditor")
	if span == nil {
		t.Fatal("StartRun() returned nil span")
	}
	_, stageSpan := tracer.StartStage(ctx, "policy_evaluation")
	RecordError(stageSpan, errors.New("denied"))
	stageSpan.End()
	span.End()

	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error: %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Enabled {
		t.Error("tracing must default to disabled")
	}
	if cfg.ServiceName != "polaris" {
		t.Errorf("ServiceName = %q", cfg.ServiceName)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("SampleRate = %v", cfg.SampleRate)
	}
}

func TestNilConfigDefaults(t *testing.T) {
	tracer, err := New(context.Background(), nil)
	if err != nil {
		t.Fatalf("New(nil) error: %v", err)
	}
	if tracer.Enabled() {
		t.Error("nil config must produce a disabled tracer")
	}
}
