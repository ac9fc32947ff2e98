package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/salonos/backend/internal/domain/analytics"
	"github.com/salonos/backend/internal/domain/shared"
)

// SnapshotCache provides TTL-bounded, request-deduplicated snapshot loads.
// Concurrent callers asking for the same key share one repository round
// trip.
type SnapshotCache interface {
	GetOrLoad(ctx context.Context, key string, load func(context.Context) (analytics.Snapshot, error)) (analytics.Snapshot, error)
	Invalidate(key string)
}

// ResultCache optionally shares rendered dashboard results across
// instances. A nil payload without error means a miss.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// Metrics receives business metric events from the dashboard service.
type Metrics interface {
	RecordSnapshotLoad(ctx context.Context, d time.Duration, err error)
	RecordResultCache(ctx context.Context, hit bool)
	RecordAlert(ctx context.Context, alertType string)
	RecordExport(ctx context.Context, format string)
}

type nopMetrics struct{}

func (nopMetrics) RecordSnapshotLoad(context.Context, time.Duration, error) {}
func (nopMetrics) RecordResultCache(context.Context, bool)                  {}
func (nopMetrics) RecordAlert(context.Context, string)                      {}
func (nopMetrics) RecordExport(context.Context, string)                     {}

// Query carries the caller-supplied scope for every dashboard operation.
// The HTTP layer parses and validates the raw query string before
// constructing it.
type Query struct {
	LocationID *uuid.UUID
	StartDate  string
	EndDate    string
}

// DashboardService assembles analytics results from cached snapshots.
type DashboardService struct {
	repo      analytics.SnapshotRepository
	cache     SnapshotCache
	results   ResultCache
	resultTTL time.Duration
	metrics   Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// DashboardServiceOption is a functional option for configuring the service
type DashboardServiceOption func(*DashboardService)

// WithResultCache enables cross-instance caching of rendered dashboards.
func WithResultCache(rc ResultCache, ttl time.Duration) DashboardServiceOption {
	return func(s *DashboardService) {
		s.results = rc
		if ttl > 0 {
			s.resultTTL = ttl
		}
	}
}

// WithMetrics publishes business metrics for snapshot loads, cache lookups,
// raised alerts and exports.
func WithMetrics(m Metrics) DashboardServiceOption {
	return func(s *DashboardService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewDashboardService creates a new DashboardService. nowFn may be nil, in
// which case time.Now is used.
func NewDashboardService(
	repo analytics.SnapshotRepository,
	cache SnapshotCache,
	logger *zap.Logger,
	nowFn func() time.Time,
	opts ...DashboardServiceOption,
) *DashboardService {
	if nowFn == nil {
		nowFn = time.Now
	}
	s := &DashboardService{
		repo:      repo,
		cache:     cache,
		resultTTL: 30 * time.Second,
		metrics:   nopMetrics{},
		logger:    logger,
		now:       nowFn,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// window validates the query dates and builds the engine window. A supplied
// but malformed bound and an inverted range are both rejected.
func (s *DashboardService) window(q Query) (analytics.Window, error) {
	start := analytics.ParseDate(q.StartDate)
	if q.StartDate != "" && start.IsZero() {
		return analytics.Window{}, shared.ErrInvalidDateRange
	}
	end := analytics.ParseDate(q.EndDate)
	if q.EndDate != "" && end.IsZero() {
		return analytics.Window{}, shared.ErrInvalidDateRange
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return analytics.Window{}, shared.ErrInvalidDateRange
	}
	return analytics.Window{Start: start, End: end}, nil
}

func snapshotKey(orgID uuid.UUID, locationID *uuid.UUID) string {
	if locationID == nil {
		return orgID.String()
	}
	return orgID.String() + ":" + locationID.String()
}

func (s *DashboardService) snapshot(ctx context.Context, orgID uuid.UUID, q Query) (analytics.Snapshot, error) {
	if orgID == uuid.Nil {
		return analytics.Snapshot{}, shared.ErrTenantRequired
	}
	filter := analytics.SnapshotFilter{OrgID: orgID, LocationID: q.LocationID}
	key := snapshotKey(orgID, q.LocationID)

	return s.cache.GetOrLoad(ctx, key, func(ctx context.Context) (analytics.Snapshot, error) {
		started := time.Now()
		snap, err := s.loadSnapshot(ctx, filter)
		s.metrics.RecordSnapshotLoad(ctx, time.Since(started), err)
		if err != nil {
			s.logger.Error("snapshot load failed",
				zap.String("org_id", orgID.String()),
				zap.Error(err))
			return analytics.Snapshot{}, err
		}
		s.logger.Debug("snapshot loaded",
			zap.String("org_id", orgID.String()),
			zap.Int("appointments", len(snap.Appointments)),
			zap.Int("payments", len(snap.Payments)),
			zap.Duration("elapsed", time.Since(started)))
		return snap, nil
	})
}

func (s *DashboardService) loadSnapshot(ctx context.Context, f analytics.SnapshotFilter) (analytics.Snapshot, error) {
	var snap analytics.Snapshot
	var err error

	if snap.Appointments, err = s.repo.GetAppointments(ctx, f); err != nil {
		return analytics.Snapshot{}, fmt.Errorf("load appointments: %w", err)
	}
	if snap.Payments, err = s.repo.GetPayments(ctx, f); err != nil {
		return analytics.Snapshot{}, fmt.Errorf("load payments: %w", err)
	}
	if snap.Expenses, err = s.repo.GetExpenses(ctx, f); err != nil {
		return analytics.Snapshot{}, fmt.Errorf("load expenses: %w", err)
	}
	if snap.Commissions, err = s.repo.GetCommissions(ctx, f); err != nil {
		return analytics.Snapshot{}, fmt.Errorf("load commissions: %w", err)
	}
	if snap.Reconciliations, err = s.repo.GetReconciliations(ctx, f); err != nil {
		return analytics.Snapshot{}, fmt.Errorf("load reconciliations: %w", err)
	}
	return snap, nil
}

// GetDashboard returns the complete analytics result for the scope. When a
// result cache is configured the rendered result is shared across instances;
// cache failures degrade to a plain compute.
func (s *DashboardService) GetDashboard(ctx context.Context, orgID uuid.UUID, q Query) (*analytics.Result, error) {
	w, err := s.window(q)
	if err != nil {
		return nil, err
	}
	if orgID == uuid.Nil {
		return nil, shared.ErrTenantRequired
	}

	key := ""
	if s.results != nil {
		// The current date is part of the key: daily cash and alerts shift
		// at midnight even for an unchanged window.
		key = fmt.Sprintf("%s:dashboard:%s:%s:%s",
			snapshotKey(orgID, q.LocationID), w.Start, w.End, analytics.NewDate(s.now()))
		if data, err := s.results.Get(ctx, key); err != nil {
			s.logger.Warn("result cache read failed", zap.Error(err))
		} else if data != nil {
			var cached analytics.Result
			if err := json.Unmarshal(data, &cached); err == nil {
				s.metrics.RecordResultCache(ctx, true)
				return &cached, nil
			}
			s.logger.Warn("discarding undecodable cached result", zap.String("key", key))
		}
		s.metrics.RecordResultCache(ctx, false)
	}

	snap, err := s.snapshot(ctx, orgID, q)
	if err != nil {
		return nil, err
	}
	result := analytics.Compute(snap, w, s.now())
	for _, alert := range result.Alerts {
		s.metrics.RecordAlert(ctx, string(alert.Type))
	}

	if s.results != nil {
		if data, err := json.Marshal(result); err == nil {
			if err := s.results.Set(ctx, key, data, s.resultTTL); err != nil {
				s.logger.Warn("result cache write failed", zap.Error(err))
			}
		}
	}
	return &result, nil
}

// GetKPIs returns the windowed KPI set.
func (s *DashboardService) GetKPIs(ctx context.Context, orgID uuid.UUID, q Query) (*analytics.KPISet, error) {
	w, err := s.window(q)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshot(ctx, orgID, q)
	if err != nil {
		return nil, err
	}
	kpis := analytics.ComputeKPIs(snap, w, s.now())
	return &kpis, nil
}

// GetMargins returns percentage margins for the window.
func (s *DashboardService) GetMargins(ctx context.Context, orgID uuid.UUID, q Query) (*analytics.Margins, error) {
	kpis, err := s.GetKPIs(ctx, orgID, q)
	if err != nil {
		return nil, err
	}
	margins := analytics.ComputeMargins(*kpis)
	return &margins, nil
}

// GetBreakEven returns the break-even chart figures for the window.
func (s *DashboardService) GetBreakEven(ctx context.Context, orgID uuid.UUID, q Query) (*analytics.BreakEven, error) {
	w, err := s.window(q)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshot(ctx, orgID, q)
	if err != nil {
		return nil, err
	}
	filtered := snap.Filter(w)
	revenue := analytics.ReconcileRevenue(filtered.Appointments, filtered.Payments)
	be := analytics.ComputeBreakEven(filtered.Expenses, revenue.GrossRevenue, w)
	return &be, nil
}

// GetProjection returns the linear revenue projection for the window.
func (s *DashboardService) GetProjection(ctx context.Context, orgID uuid.UUID, q Query) (*analytics.Projection, error) {
	be, err := s.GetBreakEven(ctx, orgID, q)
	if err != nil {
		return nil, err
	}
	projection := analytics.ComputeProjection(be.DailyRevenue)
	return &projection, nil
}

// GetOccupancy returns the completion-ratio occupancy proxy for the window.
func (s *DashboardService) GetOccupancy(ctx context.Context, orgID uuid.UUID, q Query) (*analytics.Occupancy, error) {
	w, err := s.window(q)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshot(ctx, orgID, q)
	if err != nil {
		return nil, err
	}
	occupancy := analytics.ComputeOccupancy(snap.Appointments, w)
	return &occupancy, nil
}

// GetAlerts evaluates the alert rules over the full snapshot. The rules use
// their own 7 and 28 day lookbacks, so the query window does not apply.
func (s *DashboardService) GetAlerts(ctx context.Context, orgID uuid.UUID, q Query) ([]analytics.Alert, error) {
	snap, err := s.snapshot(ctx, orgID, q)
	if err != nil {
		return nil, err
	}
	return analytics.EvaluateAlerts(snap, s.now()), nil
}

// GetReconciliationDifferences returns the gateway settlement rows inside
// the window whose settled amount deviates from the sold amount.
func (s *DashboardService) GetReconciliationDifferences(ctx context.Context, orgID uuid.UUID, q Query) ([]analytics.GatewayReconciliation, error) {
	w, err := s.window(q)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshot(ctx, orgID, q)
	if err != nil {
		return nil, err
	}
	rows := analytics.DetectDifferences(analytics.FilterReconciliations(snap.Reconciliations, w))
	if rows == nil {
		rows = []analytics.GatewayReconciliation{}
	}
	return rows, nil
}

// InvalidateSnapshot drops the cached snapshot for the scope so the next
// read hits the repository.
func (s *DashboardService) InvalidateSnapshot(orgID uuid.UUID, locationID *uuid.UUID) {
	s.cache.Invalidate(snapshotKey(orgID, locationID))
}
