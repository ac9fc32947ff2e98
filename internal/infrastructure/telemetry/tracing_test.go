package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/salonos/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupTestTracer installs an in-memory span recorder as the global tracer
// provider and restores the previous provider on cleanup.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
	})

	return recorder
}

func TestStartSpan(t *testing.T) {
	recorder := setupTestTracer(t)

	ctx, span := telemetry.StartSpan(context.Background(), "analytics.dashboard",
		telemetry.WithAttribute(telemetry.SpanAttrOrgID, "org-1"),
		telemetry.WithSpanKind(trace.SpanKindServer),
	)
	require.NotNil(t, ctx)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "analytics.dashboard", spans[0].Name())
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())
	assert.Contains(t, spans[0].Attributes(), attribute.String("org_id", "org-1"))
}

func TestStartServiceSpan(t *testing.T) {
	recorder := setupTestTracer(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "analytics", "kpis")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "analytics.kpis", spans[0].Name())
}

func TestSetAttributes(t *testing.T) {
	recorder := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "test")
	telemetry.SetAttributes(span,
		"window_start", "2024-01-01",
		"appointments", 42,
		123, "skipped non-string key",
	)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := spans[0].Attributes()
	assert.Contains(t, attrs, attribute.String("window_start", "2024-01-01"))
	assert.Contains(t, attrs, attribute.Int("appointments", 42))
	assert.Len(t, attrs, 2)
}

func TestRecordError(t *testing.T) {
	recorder := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "test")
	telemetry.RecordError(span, errors.New("snapshot load failed"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "snapshot load failed", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
}

func TestRecordError_NilError(t *testing.T) {
	recorder := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "test")
	telemetry.RecordError(span, nil)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Empty(t, spans[0].Events())
}

func TestAddEvent(t *testing.T) {
	recorder := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "test")
	telemetry.AddEvent(span, "cache_miss", "snapshot_key", "org-1:loc-1")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "cache_miss", spans[0].Events()[0].Name)
	assert.Contains(t, spans[0].Events()[0].Attributes, attribute.String("snapshot_key", "org-1:loc-1"))
}

func TestGetTraceID(t *testing.T) {
	setupTestTracer(t)

	assert.Empty(t, telemetry.GetTraceID(context.Background()))
	assert.Empty(t, telemetry.GetSpanID(context.Background()))

	ctx, span := telemetry.StartSpan(context.Background(), "test")
	defer span.End()

	assert.NotEmpty(t, telemetry.GetTraceID(ctx))
	assert.NotEmpty(t, telemetry.GetSpanID(ctx))
}
