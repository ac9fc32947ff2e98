package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// AnalyticsMetrics provides business metrics for the analytics engine.
// It tracks snapshot loading, result cache effectiveness, raised alerts
// and report exports.
type AnalyticsMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	snapshotLoadTotal    *Counter
	snapshotLoadDuration *Histogram
	resultCacheTotal     *Counter
	alertsRaisedTotal    *Counter
	exportTotal          *Counter
}

// NewAnalyticsMetrics creates a new AnalyticsMetrics instance.
func NewAnalyticsMetrics(meter metric.Meter, logger *zap.Logger) (*AnalyticsMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	am := &AnalyticsMetrics{
		meter:  meter,
		logger: logger,
	}

	var err error

	am.snapshotLoadTotal, err = NewCounter(
		meter,
		"salon_snapshot_load_total",
		"Total number of financial snapshot loads from the database",
		"{loads}",
	)
	if err != nil {
		return nil, err
	}

	am.snapshotLoadDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "salon_snapshot_load_duration_seconds",
		Description: "Financial snapshot load latency distribution in seconds",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	am.resultCacheTotal, err = NewCounter(
		meter,
		"salon_result_cache_total",
		"Dashboard result cache lookups by outcome",
		"{lookups}",
	)
	if err != nil {
		return nil, err
	}

	am.alertsRaisedTotal, err = NewCounter(
		meter,
		"salon_alerts_raised_total",
		"Total number of operational alerts raised by type",
		"{alerts}",
	)
	if err != nil {
		return nil, err
	}

	am.exportTotal, err = NewCounter(
		meter,
		"salon_export_total",
		"Total number of KPI exports by format",
		"{exports}",
	)
	if err != nil {
		return nil, err
	}

	return am, nil
}

// RecordSnapshotLoad records a snapshot load and its duration.
func (am *AnalyticsMetrics) RecordSnapshotLoad(ctx context.Context, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	am.snapshotLoadTotal.Inc(ctx, AttrLoadStatus.String(status))
	am.snapshotLoadDuration.RecordDuration(ctx, d, AttrLoadStatus.String(status))
}

// RecordResultCache records a dashboard result cache lookup outcome.
func (am *AnalyticsMetrics) RecordResultCache(ctx context.Context, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	am.resultCacheTotal.Inc(ctx, AttrCacheResult.String(result))
}

// RecordAlert records a raised alert by type.
func (am *AnalyticsMetrics) RecordAlert(ctx context.Context, alertType string) {
	am.alertsRaisedTotal.Inc(ctx, AttrAlertType.String(alertType))
}

// RecordExport records a KPI export by format.
func (am *AnalyticsMetrics) RecordExport(ctx context.Context, format string) {
	am.exportTotal.Inc(ctx, AttrExportFormat.String(format))
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewAnalyticsMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
