package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "github.com/salonos/backend/internal/domain/analytics"
	"github.com/salonos/backend/internal/domain/shared"
)

type stubRepo struct {
	snap  domain.Snapshot
	err   error
	calls int
}

func (r *stubRepo) GetAppointments(ctx context.Context, f domain.SnapshotFilter) ([]domain.Appointment, error) {
	r.calls++
	return r.snap.Appointments, r.err
}

func (r *stubRepo) GetPayments(ctx context.Context, f domain.SnapshotFilter) ([]domain.Payment, error) {
	return r.snap.Payments, r.err
}

func (r *stubRepo) GetExpenses(ctx context.Context, f domain.SnapshotFilter) ([]domain.Expense, error) {
	return r.snap.Expenses, r.err
}

func (r *stubRepo) GetCommissions(ctx context.Context, f domain.SnapshotFilter) ([]domain.Commission, error) {
	return r.snap.Commissions, r.err
}

func (r *stubRepo) GetReconciliations(ctx context.Context, f domain.SnapshotFilter) ([]domain.GatewayReconciliation, error) {
	return r.snap.Reconciliations, r.err
}

// passCache forwards every load without caching.
type passCache struct {
	keys []string
}

func (c *passCache) GetOrLoad(ctx context.Context, key string, load func(context.Context) (domain.Snapshot, error)) (domain.Snapshot, error) {
	c.keys = append(c.keys, key)
	return load(ctx)
}

func (c *passCache) Invalidate(key string) {}

func mustDec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

var fixedNow = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func newService(repo *stubRepo, cache SnapshotCache) *DashboardService {
	if cache == nil {
		cache = &passCache{}
	}
	return NewDashboardService(repo, cache, zap.NewNop(), func() time.Time { return fixedNow })
}

func TestDashboardService_WindowValidation(t *testing.T) {
	svc := newService(&stubRepo{}, nil)
	orgID := uuid.New()

	tests := []struct {
		name  string
		query Query
	}{
		{"malformed start", Query{StartDate: "15/01/2024"}},
		{"malformed end", Query{EndDate: "soon"}},
		{"inverted range", Query{StartDate: "2024-02-01", EndDate: "2024-01-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetKPIs(context.Background(), orgID, tt.query)
			assert.ErrorIs(t, err, shared.ErrInvalidDateRange)
		})
	}
}

func TestDashboardService_RequiresOrg(t *testing.T) {
	svc := newService(&stubRepo{}, nil)

	_, err := svc.GetKPIs(context.Background(), uuid.Nil, Query{})
	assert.ErrorIs(t, err, shared.ErrTenantRequired)
}

func TestDashboardService_GetKPIs(t *testing.T) {
	repo := &stubRepo{snap: domain.Snapshot{
		Appointments: []domain.Appointment{{
			Status:      domain.AppointmentStatusCompleted,
			TotalAmount: mustDec(t, "1000"),
			Date:        domain.Date("2024-01-10"),
		}},
		Payments: []domain.Payment{{
			Amount: mustDec(t, "800"),
			Date:   domain.Date("2024-01-15"),
		}},
	}}
	svc := newService(repo, nil)

	got, err := svc.GetKPIs(context.Background(), uuid.New(), Query{
		StartDate: "2024-01-01", EndDate: "2024-01-31",
	})
	require.NoError(t, err)
	assert.True(t, got.GrossRevenue.Equal(mustDec(t, "1000")))
	assert.Equal(t, 1, got.CompletedAppointments)
}

func TestDashboardService_RepoErrorPropagates(t *testing.T) {
	sentinel := errors.New("connection refused")
	svc := newService(&stubRepo{err: sentinel}, nil)

	_, err := svc.GetDashboard(context.Background(), uuid.New(), Query{})
	assert.ErrorIs(t, err, sentinel)
}

func TestDashboardService_DifferencesNeverNil(t *testing.T) {
	svc := newService(&stubRepo{}, nil)

	got, err := svc.GetReconciliationDifferences(context.Background(), uuid.New(), Query{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDashboardService_CacheKeyIncludesLocation(t *testing.T) {
	cache := &passCache{}
	svc := newService(&stubRepo{}, cache)
	orgID := uuid.New()
	locationID := uuid.New()

	_, err := svc.GetKPIs(context.Background(), orgID, Query{})
	require.NoError(t, err)
	_, err = svc.GetKPIs(context.Background(), orgID, Query{LocationID: &locationID})
	require.NoError(t, err)

	require.Len(t, cache.keys, 2)
	assert.Equal(t, orgID.String(), cache.keys[0])
	assert.Equal(t, orgID.String()+":"+locationID.String(), cache.keys[1])
}

func TestDashboardService_GetAlertsIgnoresWindow(t *testing.T) {
	repo := &stubRepo{snap: domain.Snapshot{
		Appointments: []domain.Appointment{
			{Status: domain.AppointmentStatusCancelled, Date: domain.Date("2024-05-01")},
			{Status: domain.AppointmentStatusCompleted, Date: domain.Date("2024-05-02")},
		},
	}}
	svc := newService(repo, nil)

	alerts, err := svc.GetAlerts(context.Background(), uuid.New(), Query{
		StartDate: "2020-01-01", EndDate: "2020-01-31",
	})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertTypeNoShow, alerts[0].Type)
}
