package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/salonos/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newDisabledMeterProvider(t *testing.T, cfg telemetry.MetricsConfig) *telemetry.MeterProvider {
	t.Helper()
	cfg.Enabled = false
	mp, err := telemetry.NewMeterProvider(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, mp)
	return mp
}

func TestMeterProvider_Disabled(t *testing.T) {
	mp := newDisabledMeterProvider(t, telemetry.MetricsConfig{
		CollectorEndpoint: "localhost:4317",
		ExportInterval:    60 * time.Second,
		ServiceName:       "test-service",
	})
	ctx := context.Background()

	assert.False(t, mp.IsEnabled())
	assert.Equal(t, "test-service", mp.GetConfig().ServiceName)
	assert.False(t, mp.GetConfig().Enabled)

	require.NotNil(t, mp.Meter("test-meter"))

	assert.NoError(t, mp.ForceFlush(ctx))
	assert.NoError(t, mp.Shutdown(ctx))
}

// Instrument helpers must stay usable against a no-op meter so callers can
// record unconditionally.
func TestInstruments_NoopMeter(t *testing.T) {
	mp := newDisabledMeterProvider(t, telemetry.MetricsConfig{})
	meter := mp.Meter("test")
	ctx := context.Background()

	t.Run("counter", func(t *testing.T) {
		counter, err := telemetry.NewCounter(meter, "test_total", "test counter", "{items}")
		require.NoError(t, err)
		require.NotNil(t, counter)

		counter.Inc(ctx, telemetry.AttrOrgID.String("org-1"))
		counter.Add(ctx, 5)
	})

	t.Run("histogram", func(t *testing.T) {
		hist, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
			Name:        "test_duration_seconds",
			Description: "test histogram",
			Unit:        "s",
			Boundaries:  telemetry.DBDurationBuckets,
		})
		require.NoError(t, err)
		require.NotNil(t, hist)

		hist.Record(ctx, 0.125)
		hist.RecordDuration(ctx, 40*time.Millisecond)
	})

	t.Run("gauge", func(t *testing.T) {
		gauge, err := telemetry.NewGauge(meter, "test_current", "test gauge", "{items}")
		require.NoError(t, err)
		require.NotNil(t, gauge)

		gauge.Record(ctx, 7, telemetry.AttrDBState.String("idle"))
	})
}
