package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/vigil/internal/adapters/telemetry"
	"go.trai.ch/vigil/internal/core/ports"
	"go.trai.ch/vigil/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestBridge_OnEnd(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	bridge := telemetry.NewBridge(renderer)

	renderer.EXPECT().OnActivity("cache.fetch", gomock.Any(), nil).Times(1)

	tp := sdktrace.NewTracerProvider()
	_, span := tp.Tracer("test").Start(context.Background(), "cache.fetch")
	span.End()

	if roSpan, ok := span.(sdktrace.ReadOnlySpan); ok {
		bridge.OnEnd(roSpan)
	}
}

func TestBridge_OnEndWithError(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	bridge := telemetry.NewBridge(renderer)

	var got error
	renderer.EXPECT().OnActivity("mutation.execute", gomock.Any(), gomock.Any()).
		Do(func(_ string, _ time.Duration, err error) { got = err }).
		Times(1)

	tp := sdktrace.NewTracerProvider()
	_, span := tp.Tracer("test").Start(context.Background(), "mutation.execute")
	span.SetStatus(codes.Error, "backend rejected request")
	span.End()

	if roSpan, ok := span.(sdktrace.ReadOnlySpan); ok {
		bridge.OnEnd(roSpan)
	}

	require.Error(t, got)
	assert.Equal(t, "backend rejected request", got.Error())
}

func TestBridge_NilRenderer(_ *testing.T) {
	bridge := telemetry.NewBridge(nil)

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "noop")
	if rwSpan, ok := span.(sdktrace.ReadWriteSpan); ok {
		bridge.OnStart(ctx, rwSpan)
	}
	span.End()
	if roSpan, ok := span.(sdktrace.ReadOnlySpan); ok {
		bridge.OnEnd(roSpan)
	}
}

func TestBridge_FlushAndShutdown(t *testing.T) {
	bridge := telemetry.NewBridge(nil)
	require.NoError(t, bridge.ForceFlush(context.Background()))
	require.NoError(t, bridge.Shutdown(context.Background()))
}

func TestOTelTracer_AttachForwardsSpans(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)

	tracer := telemetry.NewOTelTracer("test")
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })

	renderer.EXPECT().OnActivity("stream.connect", gomock.Any(), gomock.Any()).Times(1)

	detach := tracer.Attach(renderer)
	_, span := tracer.Start(context.Background(), "stream.connect", ports.WithAttribute("attempt", 2))
	span.RecordError(errors.New("dial refused"))
	span.End()

	detach()
	detach()

	// Not forwarded after detaching.
	_, span = tracer.Start(context.Background(), "stream.connect")
	span.End()
}

func TestOTelSpan_Attributes(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tracer := telemetry.NewOTelTracer("test", sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })

	_, span := tracer.Start(context.Background(), "cache.fetch",
		ports.WithAttribute("key", "user-balances(alice)"),
	)
	span.SetAttribute("count", 3)
	span.SetAttribute("ratio", 0.5)
	span.SetAttribute("ok", true)
	span.SetAttribute("domains", []string{"metrics"})
	span.SetAttribute("big", int64(7))
	span.SetAttribute("other", struct{}{})
	span.RecordError(errors.New("boom"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)

	attrs := make(map[string]string)
	for _, kv := range ended[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "user-balances(alice)", attrs["key"])
	assert.Equal(t, "3", attrs["count"])
	assert.Equal(t, "true", attrs["ok"])
	assert.Equal(t, "7", attrs["big"])
	assert.Equal(t, "{}", attrs["other"])
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "boom", ended[0].Status().Description)
}

func TestNoOpTracer(t *testing.T) {
	tracer := telemetry.NewNoOpTracer()
	ctx := context.Background()

	got, span := tracer.Start(ctx, "cache.fetch", ports.WithAttribute("key", "metrics"))
	assert.Equal(t, ctx, got)

	span.SetAttribute("key", "metrics")
	span.RecordError(errors.New("boom"))
	span.End()
}
