package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompute_FullResult(t *testing.T) {
	now := time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)
	w := NewWindow("2024-01-01", "2024-01-31")
	snap := Snapshot{
		Appointments: []Appointment{
			{Status: AppointmentStatusCompleted, TotalAmount: dec("600"), Date: Date("2024-01-10")},
			{Status: AppointmentStatusCompleted, TotalAmount: dec("400"), Date: Date("2024-01-20")},
		},
		Payments: []Payment{
			{Amount: dec("900"), Date: Date("2024-01-15"), DiscountAmount: dec("50")},
		},
		Expenses: []Expense{
			{Amount: dec("300"), Category: "rent", IncurredAt: Date("2024-01-05")},
			{Amount: dec("120"), Category: "supplies", IncurredAt: Date("2024-01-06")},
		},
		Commissions: []Commission{{Amount: dec("100"), Date: Date("2024-01-10")}},
		Reconciliations: []GatewayReconciliation{
			{SoldAmount: dec("900"), SettledAmount: dec("870"), TransactionDate: Date("2024-01-16")},
			{SoldAmount: dec("100"), SettledAmount: dec("95"), TransactionDate: Date("2024-03-01")},
		},
	}

	got := Compute(snap, w, now)

	assert.Equal(t, w, got.Window)
	assert.Equal(t, now, got.GeneratedAt)

	// gross = max(1000, 900); net = gross - 50 discount
	assert.True(t, got.Revenue.GrossRevenue.Equal(dec("1000")))
	assert.True(t, got.Revenue.NetRevenue.Equal(dec("950")))
	assert.True(t, got.KPIs.GrossMargin.Equal(dec("850")))
	assert.True(t, got.KPIs.NetMargin.Equal(dec("430")))

	assert.True(t, got.Margins.GrossMarginPercent.Round(2).Equal(dec("89.47")))

	assert.Equal(t, 2, got.Occupancy.Completed)
	assert.True(t, got.BreakEven.DailyFixedCost.Equal(dec("10")))
	assert.Equal(t, 30, got.BreakEven.Days)

	// daily revenue 1000/30 extrapolated back out
	assert.True(t, got.Projection.Next30Days.Round(2).Equal(dec("1000.00")))

	// March row is outside the window.
	if assert.Len(t, got.Differences, 1) {
		assert.True(t, got.Differences[0].Difference.Equal(dec("30")))
	}
}

func TestCompute_AlertsIgnoreWindow(t *testing.T) {
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	// Narrow January window; the cancellation spike lives in May.
	w := NewWindow("2024-01-01", "2024-01-31")
	snap := Snapshot{Appointments: []Appointment{
		{Status: AppointmentStatusCancelled, Date: Date("2024-05-01")},
		{Status: AppointmentStatusCompleted, Date: Date("2024-05-02")},
	}}

	got := Compute(snap, w, now)
	if assert.Len(t, got.Alerts, 1) {
		assert.Equal(t, AlertTypeNoShow, got.Alerts[0].Type)
	}
	assert.Zero(t, got.KPIs.TotalAppointments)
}
