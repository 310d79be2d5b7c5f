package telemetry

import (
	"context"

	"go.trai.ch/vigil/internal/core/ports"
)

// NoOpTracer is a ports.Tracer that records nothing. One-shot commands use it.
type NoOpTracer struct{}

// NewNoOpTracer creates a new NoOpTracer.
func NewNoOpTracer() *NoOpTracer {
	return &NoOpTracer{}
}

// Start returns ctx unchanged and a span that does nothing.
func (t *NoOpTracer) Start(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
	return ctx, noOpSpan{}
}

type noOpSpan struct{}

func (noOpSpan) End() {}

func (noOpSpan) RecordError(_ error) {}

func (noOpSpan) SetAttribute(_ string, _ any) {}
