package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// KPISet holds the derived financial indicators for one window. All values
// stay at full decimal precision; rounding to currency precision happens
// only at presentation.
type KPISet struct {
	GrossRevenue          decimal.Decimal `json:"gross_revenue"`
	NetRevenue            decimal.Decimal `json:"net_revenue"`
	DirectCosts           decimal.Decimal `json:"direct_costs"`
	GrossMargin           decimal.Decimal `json:"gross_margin"`
	TotalExpenses         decimal.Decimal `json:"total_expenses"`
	NetMargin             decimal.Decimal `json:"net_margin"`
	AverageTicket         decimal.Decimal `json:"average_ticket"`
	OccupancyRate         decimal.Decimal `json:"occupancy_rate"`
	DailyCash             decimal.Decimal `json:"daily_cash"`
	PendingSettlement     decimal.Decimal `json:"pending_settlement"`
	CompletedAppointments int             `json:"completed_appointments"`
	TotalAppointments     int             `json:"total_appointments"`
}

// Occupancy is the completion-ratio proxy exposed alongside the KPI set.
// It is not a true hours-utilization metric: it only relates completed
// appointments to everything booked in the window.
type Occupancy struct {
	Completed int             `json:"completed"`
	Total     int             `json:"total"`
	Rate      decimal.Decimal `json:"rate"`
}

// ComputeKPIs derives the KPI set for the given window. The snapshot is the
// full unfiltered view; windowing happens here. now anchors the daily-cash
// figure, which is always scoped to the current calendar date independently
// of the caller-supplied window.
func ComputeKPIs(snap Snapshot, w Window, now time.Time) KPISet {
	filtered := snap.Filter(w)
	revenue := ReconcileRevenue(filtered.Appointments, filtered.Payments)

	// Direct costs are all commission payouts dated in the window, not just
	// those on completed appointments.
	directCosts := decimal.Zero
	for _, c := range filtered.Commissions {
		directCosts = directCosts.Add(c.Amount)
	}

	totalExpenses := decimal.Zero
	for _, e := range filtered.Expenses {
		totalExpenses = totalExpenses.Add(e.Amount)
	}

	completedCount := 0
	for _, a := range filtered.Appointments {
		if a.IsCompleted() {
			completedCount++
		}
	}
	totalCount := len(filtered.Appointments)

	averageTicket := decimal.Zero
	if completedCount > 0 {
		averageTicket = revenue.GrossRevenue.Div(decimal.NewFromInt(int64(completedCount)))
	}

	occupancyRate := decimal.Zero
	if totalCount > 0 {
		occupancyRate = decimal.NewFromInt(int64(completedCount)).
			Div(decimal.NewFromInt(int64(totalCount))).
			Mul(oneHundred)
	}

	pendingSettlement := decimal.Zero
	for _, p := range filtered.Payments {
		if !p.IsSettled() {
			pendingSettlement = pendingSettlement.Add(p.Amount)
		}
	}

	grossMargin := revenue.NetRevenue.Sub(directCosts)

	return KPISet{
		GrossRevenue:          revenue.GrossRevenue,
		NetRevenue:            revenue.NetRevenue,
		DirectCosts:           directCosts,
		GrossMargin:           grossMargin,
		TotalExpenses:         totalExpenses,
		NetMargin:             grossMargin.Sub(totalExpenses),
		AverageTicket:         averageTicket,
		OccupancyRate:         occupancyRate,
		DailyCash:             computeDailyCash(snap, now),
		PendingSettlement:     pendingSettlement,
		CompletedAppointments: completedCount,
		TotalAppointments:     totalCount,
	}
}

// computeDailyCash applies the same two-signal max rule to the current
// calendar date over the full snapshot.
func computeDailyCash(snap Snapshot, now time.Time) decimal.Decimal {
	today := DayWindow(NewDate(now))
	revenue := ReconcileRevenue(
		FilterAppointments(snap.Appointments, today),
		FilterPayments(snap.Payments, today),
	)
	return revenue.GrossRevenue
}

// ComputeOccupancy exposes the occupancy proxy as its own result object.
func ComputeOccupancy(appointments []Appointment, w Window) Occupancy {
	filtered := FilterAppointments(appointments, w)
	completed := 0
	for _, a := range filtered {
		if a.IsCompleted() {
			completed++
		}
	}
	rate := decimal.Zero
	if len(filtered) > 0 {
		rate = decimal.NewFromInt(int64(completed)).
			Div(decimal.NewFromInt(int64(len(filtered)))).
			Mul(oneHundred)
	}
	return Occupancy{Completed: completed, Total: len(filtered), Rate: rate}
}
