// Package telemetry adapts OpenTelemetry tracing to ports.Tracer and feeds
// finished spans to the console renderer.
package telemetry

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/vigil/internal/core/ports"
)

// InstrumentationName names the tracer registered with OpenTelemetry.
const InstrumentationName = "vigil"

// OTelTracer implements ports.Tracer on an SDK TracerProvider it owns.
type OTelTracer struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer

	mu      sync.Mutex
	bridges map[*Bridge]struct{}
}

// NewOTelTracer creates a tracer and registers its provider globally.
func NewOTelTracer(name string, opts ...sdktrace.TracerProviderOption) *OTelTracer {
	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)

	return &OTelTracer{
		provider: tp,
		tracer:   tp.Tracer(name),
		bridges:  make(map[*Bridge]struct{}),
	}
}

// Attach forwards every span that ends from now on to renderer. The returned
// function detaches it again.
func (t *OTelTracer) Attach(renderer ports.Renderer) func() {
	bridge := NewBridge(renderer)
	t.provider.RegisterSpanProcessor(bridge)

	t.mu.Lock()
	t.bridges[bridge] = struct{}{}
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		_, ok := t.bridges[bridge]
		delete(t.bridges, bridge)
		t.mu.Unlock()

		if ok {
			t.provider.UnregisterSpanProcessor(bridge)
		}
	}
}

// Shutdown flushes and stops the provider.
func (t *OTelTracer) Shutdown(ctx context.Context) error {
	return t.provider.Shutdown(ctx)
}

// Start creates a new span carrying the attributes from opts.
func (t *OTelTracer) Start(ctx context.Context, name string, opts ...ports.SpanOption) (context.Context, ports.Span) {
	cfg := &ports.SpanConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	attrs := make([]attribute.KeyValue, 0, len(cfg.Attributes))
	for key, value := range cfg.Attributes {
		attrs = append(attrs, toAttribute(key, value))
	}

	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, &OTelSpan{span: span}
}

// OTelSpan implements ports.Span using OpenTelemetry.
type OTelSpan struct {
	span trace.Span
}

// End completes the span.
func (s *OTelSpan) End() {
	s.span.End()
}

// RecordError records err and marks the span failed.
func (s *OTelSpan) RecordError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// SetAttribute adds a key-value pair to the span.
func (s *OTelSpan) SetAttribute(key string, value any) {
	s.span.SetAttributes(toAttribute(key, value))
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
