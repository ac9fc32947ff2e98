package telemetry

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// DBMetricsConfig holds configuration for database metrics collection.
type DBMetricsConfig struct {
	Enabled bool
	// PoolStatsInterval defines how often to collect connection pool stats (default: 15s).
	PoolStatsInterval time.Duration
}

// DefaultDBMetricsConfig returns default configuration for database metrics.
func DefaultDBMetricsConfig() DBMetricsConfig {
	return DBMetricsConfig{
		Enabled:           true,
		PoolStatsInterval: 15 * time.Second,
	}
}

// DBMetrics periodically exports connection pool statistics as gauges.
type DBMetrics struct {
	poolConnections    *Gauge
	poolConnectionsMax *Gauge
	poolWaitCount      *Counter

	config   DBMetricsConfig
	logger   *zap.Logger
	sqlDB    *sql.DB
	stopCh   chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	lastWaitCount int64
}

// NewDBMetrics creates a new DBMetrics instance with the given meter.
func NewDBMetrics(meter metric.Meter, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PoolStatsInterval == 0 {
		cfg.PoolStatsInterval = 15 * time.Second
	}

	poolConnections, err := NewGauge(
		meter,
		"db_pool_connections",
		"Number of connections in the pool by state",
		"{connection}",
	)
	if err != nil {
		return nil, err
	}

	poolConnectionsMax, err := NewGauge(
		meter,
		"db_pool_connections_max",
		"Maximum number of connections in the pool",
		"{connection}",
	)
	if err != nil {
		return nil, err
	}

	poolWaitCount, err := NewCounter(
		meter,
		"db_pool_wait_total",
		"Total number of times a connection had to be waited for",
		"{waits}",
	)
	if err != nil {
		return nil, err
	}

	return &DBMetrics{
		poolConnections:    poolConnections,
		poolConnectionsMax: poolConnectionsMax,
		poolWaitCount:      poolWaitCount,
		config:             cfg,
		logger:             logger,
		stopCh:             make(chan struct{}),
	}, nil
}

// Start begins periodic collection of pool statistics from the given sql.DB.
// It is non-blocking; call Stop to terminate collection.
func (m *DBMetrics) Start(ctx context.Context, sqlDB *sql.DB) {
	if !m.config.Enabled || sqlDB == nil {
		m.logger.Debug("Database metrics disabled, skipping pool stats collection")
		return
	}

	m.sqlDB = sqlDB
	m.wg.Add(1)
	go m.run(ctx)
}

func (m *DBMetrics) run(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.PoolStatsInterval)
	defer ticker.Stop()

	m.collect(ctx)

	for {
		select {
		case <-m.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.collect(ctx)
		}
	}
}

func (m *DBMetrics) collect(ctx context.Context) {
	stats := m.sqlDB.Stats()

	m.poolConnections.Record(ctx, int64(stats.InUse), AttrDBState.String("in_use"))
	m.poolConnections.Record(ctx, int64(stats.Idle), AttrDBState.String("idle"))
	m.poolConnectionsMax.Record(ctx, int64(stats.MaxOpenConnections))

	// WaitCount is cumulative; export only the delta since last collection.
	if delta := stats.WaitCount - m.lastWaitCount; delta > 0 {
		m.poolWaitCount.Add(ctx, delta)
		m.lastWaitCount = stats.WaitCount
	}
}

// Stop terminates periodic collection and waits for the collector to exit.
func (m *DBMetrics) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
	})
	m.wg.Wait()
}
