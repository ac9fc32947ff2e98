package analytics

import "time"

// Result is the full analytics output for one snapshot and window.
type Result struct {
	Window      Window                  `json:"window"`
	Revenue     RevenueBreakdown        `json:"revenue"`
	KPIs        KPISet                  `json:"kpis"`
	Margins     Margins                 `json:"margins"`
	Occupancy   Occupancy               `json:"occupancy"`
	BreakEven   BreakEven               `json:"break_even"`
	Projection  Projection              `json:"projection"`
	Alerts      []Alert                 `json:"alerts"`
	Differences []GatewayReconciliation `json:"differences"`
	GeneratedAt time.Time               `json:"generated_at"`
}

// Compute runs the whole engine over a snapshot. KPIs, margins, occupancy,
// break-even and projections respect the window; alerts and daily cash
// always look at the full snapshot so a narrow window cannot hide a
// business-wide problem.
func Compute(snap Snapshot, w Window, now time.Time) Result {
	filtered := snap.Filter(w)

	revenue := ReconcileRevenue(filtered.Appointments, filtered.Payments)
	kpis := ComputeKPIs(snap, w, now)
	breakEven := ComputeBreakEven(filtered.Expenses, kpis.GrossRevenue, w)

	return Result{
		Window:      w,
		Revenue:     revenue,
		KPIs:        kpis,
		Margins:     ComputeMargins(kpis),
		Occupancy:   ComputeOccupancy(snap.Appointments, w),
		BreakEven:   breakEven,
		Projection:  ComputeProjection(breakEven.DailyRevenue),
		Alerts:      EvaluateAlerts(snap, now),
		Differences: DetectDifferences(FilterReconciliations(snap.Reconciliations, w)),
		GeneratedAt: now,
	}
}
