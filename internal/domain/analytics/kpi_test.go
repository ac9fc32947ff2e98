package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var kpiNow = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func newUUID(t *testing.T) uuid.UUID {
	t.Helper()
	return uuid.New()
}

func TestComputeKPIs_EmptySnapshot(t *testing.T) {
	got := ComputeKPIs(Snapshot{}, Window{}, kpiNow)

	assert.True(t, got.GrossRevenue.IsZero())
	assert.True(t, got.NetRevenue.IsZero())
	assert.True(t, got.DirectCosts.IsZero())
	assert.True(t, got.AverageTicket.IsZero())
	assert.True(t, got.OccupancyRate.IsZero())
	assert.True(t, got.DailyCash.IsZero())
	assert.True(t, got.PendingSettlement.IsZero())
	assert.Zero(t, got.CompletedAppointments)
	assert.Zero(t, got.TotalAppointments)
}

func TestComputeKPIs_AverageTicketGuard(t *testing.T) {
	// Payments but no completed appointments: gross is positive, ticket
	// stays zero rather than dividing by zero.
	snap := Snapshot{Payments: []Payment{{Amount: dec("500"), Date: Date("2024-05-10")}}}

	got := ComputeKPIs(snap, Window{}, kpiNow)
	assert.True(t, got.GrossRevenue.Equal(dec("500")))
	assert.True(t, got.AverageTicket.IsZero())
}

func TestComputeKPIs_DirectCostsIncludeAllCommissions(t *testing.T) {
	appointmentID := newUUID(t)
	snap := Snapshot{
		Commissions: []Commission{
			{Amount: dec("50"), Date: Date("2024-05-01"), AppointmentID: &appointmentID},
			{Amount: dec("30"), Date: Date("2024-05-02")}, // unlinked payout still counts
		},
	}

	got := ComputeKPIs(snap, Window{}, kpiNow)
	assert.True(t, got.DirectCosts.Equal(dec("80")))
}

func TestComputeKPIs_PendingSettlement(t *testing.T) {
	snap := Snapshot{Payments: []Payment{
		{Amount: dec("100"), Date: Date("2024-05-01")},
		{Amount: dec("200"), Date: Date("2024-05-02"), GatewaySettlementDate: Date("2024-05-04")},
		{Amount: dec("300"), Date: Date("2024-05-03")},
	}}

	got := ComputeKPIs(snap, Window{}, kpiNow)
	assert.True(t, got.PendingSettlement.Equal(dec("400")))
}

func TestComputeKPIs_DailyCashIgnoresWindow(t *testing.T) {
	// The window covers January only, but today's cash still reflects the
	// payment recorded today.
	snap := Snapshot{Payments: []Payment{
		{Amount: dec("150"), Date: NewDate(kpiNow)},
		{Amount: dec("999"), Date: Date("2024-01-10")},
	}}
	w := NewWindow("2024-01-01", "2024-01-31")

	got := ComputeKPIs(snap, w, kpiNow)
	assert.True(t, got.DailyCash.Equal(dec("150")))
	assert.True(t, got.GrossRevenue.Equal(dec("999")))
}

func TestComputeKPIs_DailyCashUsesMaxRule(t *testing.T) {
	today := NewDate(kpiNow)
	snap := Snapshot{
		Appointments: []Appointment{{
			Status: AppointmentStatusCompleted, TotalAmount: dec("400"), Date: today,
		}},
		Payments: []Payment{{Amount: dec("250"), Date: today}},
	}

	got := ComputeKPIs(snap, Window{}, kpiNow)
	assert.True(t, got.DailyCash.Equal(dec("400")))
}

func TestComputeKPIs_JanuaryScenario(t *testing.T) {
	w := NewWindow("2024-01-01", "2024-01-31")
	snap := Snapshot{
		Appointments: []Appointment{
			{Status: AppointmentStatusCompleted, TotalAmount: dec("600"), Date: Date("2024-01-10")},
			{Status: AppointmentStatusCompleted, TotalAmount: dec("400"), Date: Date("2024-01-20")},
			{Status: AppointmentStatusCancelled, TotalAmount: dec("500"), Date: Date("2024-01-22")},
		},
		Payments: []Payment{{Amount: dec("800"), Date: Date("2024-01-15")}},
		Expenses: []Expense{{Amount: dec("300"), Category: "rent", Type: ExpenseTypeFixed, IncurredAt: Date("2024-01-01")}},
	}

	kpis := ComputeKPIs(snap, w, kpiNow)
	assert.True(t, kpis.GrossRevenue.Equal(dec("1000")))
	assert.True(t, kpis.NetRevenue.Equal(dec("1000")))
	assert.True(t, kpis.GrossMargin.Equal(dec("1000")))
	assert.True(t, kpis.NetMargin.Equal(dec("700")))
	assert.True(t, kpis.AverageTicket.Equal(dec("500")))
	assert.Equal(t, 2, kpis.CompletedAppointments)
	assert.Equal(t, 3, kpis.TotalAppointments)

	be := ComputeBreakEven(snap.Expenses, kpis.GrossRevenue, w)
	assert.True(t, be.DailyFixedCost.Equal(dec("10")))
	assert.True(t, be.BreakEvenPoint.Equal(dec("10")))
	assert.Equal(t, 30, be.Days)
}

func TestComputeOccupancy(t *testing.T) {
	appointments := []Appointment{
		{Status: AppointmentStatusCompleted, Date: Date("2024-05-01")},
		{Status: AppointmentStatusCompleted, Date: Date("2024-05-02")},
		{Status: AppointmentStatusCancelled, Date: Date("2024-05-03")},
		{Status: AppointmentStatusPending, Date: Date("2024-05-04")},
	}

	got := ComputeOccupancy(appointments, Window{})
	assert.Equal(t, 2, got.Completed)
	assert.Equal(t, 4, got.Total)
	assert.True(t, got.Rate.Equal(dec("50")))

	empty := ComputeOccupancy(nil, Window{})
	assert.True(t, empty.Rate.IsZero())
}
