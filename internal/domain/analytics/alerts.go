package analytics

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AlertSeverity tags how urgent an alert is.
type AlertSeverity string

const (
	AlertSeverityWarning  AlertSeverity = "warning"
	AlertSeverityCritical AlertSeverity = "critical"
)

// AlertType identifies which rule produced an alert.
type AlertType string

const (
	AlertTypeNoShow            AlertType = "no_show"
	AlertTypeRevenueDrop       AlertType = "revenue_drop"
	AlertTypeLowMargin         AlertType = "low_margin"
	AlertTypeGatewayDifference AlertType = "gateway_difference"
)

// Alert is one rule firing over the recent history.
type Alert struct {
	ID              string        `json:"id"`
	Type            AlertType     `json:"type"`
	Severity        AlertSeverity `json:"severity"`
	Title           string        `json:"title"`
	Message         string        `json:"message"`
	SuggestedAction string        `json:"suggested_action"`
}

// Alert rule thresholds.
var (
	noShowThreshold      = decimal.NewFromInt(15) // cancelled percentage
	revenueDropThreshold = decimal.NewFromInt(20) // week-over-average drop percentage
	lowMarginThreshold   = decimal.NewFromInt(10) // all-time margin percentage
)

// EvaluateAlerts runs every threshold rule over the full, unfiltered
// snapshot and returns the alerts in fixed rule order: no-show, revenue
// drop, low margin, gateway differences. The output order is the rule
// insertion order, never severity-sorted, so downstream panels render
// deterministically. All rules are independent and may fire together.
func EvaluateAlerts(snap Snapshot, now time.Time) []Alert {
	alerts := make([]Alert, 0, 4)

	if a, ok := evaluateNoShow(snap.Appointments); ok {
		alerts = append(alerts, a)
	}
	if a, ok := evaluateRevenueDrop(snap.Payments, now); ok {
		alerts = append(alerts, a)
	}
	if a, ok := evaluateLowMargin(snap.Payments, snap.Expenses); ok {
		alerts = append(alerts, a)
	}
	if a, ok := evaluateGatewayDifferences(snap.Reconciliations); ok {
		alerts = append(alerts, a)
	}

	return alerts
}

func evaluateNoShow(appointments []Appointment) (Alert, bool) {
	total := len(appointments)
	if total == 0 {
		return Alert{}, false
	}
	cancelled := 0
	for _, a := range appointments {
		if a.Status == AppointmentStatusCancelled {
			cancelled++
		}
	}
	rate := decimal.NewFromInt(int64(cancelled)).
		Div(decimal.NewFromInt(int64(total))).
		Mul(oneHundred)
	if !rate.GreaterThan(noShowThreshold) {
		return Alert{}, false
	}
	return Alert{
		ID:       string(AlertTypeNoShow),
		Type:     AlertTypeNoShow,
		Severity: AlertSeverityWarning,
		Title:    "High cancellation rate",
		Message: fmt.Sprintf("%s%% of recent appointments were cancelled (%d of %d)",
			rate.StringFixed(1), cancelled, total),
		SuggestedAction: "Enable booking reminders and consider a cancellation fee",
	}, true
}

func evaluateRevenueDrop(payments []Payment, now time.Time) (Alert, bool) {
	today := NewDate(now)
	weekAgo := today.AddDays(-7)
	fourWeeksAgo := today.AddDays(-28)

	lastWeek := decimal.Zero
	previous := decimal.Zero
	for _, p := range payments {
		if p.Date.IsZero() || p.Date.After(today) {
			continue
		}
		switch {
		case p.Date.After(weekAgo):
			lastWeek = lastWeek.Add(p.Amount)
		case p.Date.After(fourWeeksAgo):
			previous = previous.Add(p.Amount)
		}
	}

	// Average of the three preceding 7-day buckets (days 8-28 ago).
	average := previous.Div(decimal.NewFromInt(3))
	if !average.IsPositive() {
		return Alert{}, false
	}
	drop := average.Sub(lastWeek).Div(average).Mul(oneHundred)
	if !drop.GreaterThan(revenueDropThreshold) {
		return Alert{}, false
	}
	return Alert{
		ID:       string(AlertTypeRevenueDrop),
		Type:     AlertTypeRevenueDrop,
		Severity: AlertSeverityCritical,
		Title:    "Revenue drop",
		Message: fmt.Sprintf("Last week's revenue is down %s%% against the previous three-week average",
			drop.StringFixed(1)),
		SuggestedAction: "Review recent pricing or staffing changes and run a promotion",
	}, true
}

func evaluateLowMargin(payments []Payment, expenses []Expense) (Alert, bool) {
	totalRevenue := decimal.Zero
	for _, p := range payments {
		totalRevenue = totalRevenue.Add(p.Amount)
	}
	if !totalRevenue.IsPositive() {
		return Alert{}, false
	}
	totalExpenses := decimal.Zero
	for _, e := range expenses {
		totalExpenses = totalExpenses.Add(e.Amount)
	}
	margin := totalRevenue.Sub(totalExpenses).Div(totalRevenue).Mul(oneHundred)
	if !margin.LessThan(lowMarginThreshold) {
		return Alert{}, false
	}
	return Alert{
		ID:       string(AlertTypeLowMargin),
		Type:     AlertTypeLowMargin,
		Severity: AlertSeverityWarning,
		Title:    "Low overall margin",
		Message: fmt.Sprintf("Overall margin is %s%%, below the %s%% floor",
			margin.StringFixed(1), lowMarginThreshold.StringFixed(0)),
		SuggestedAction: "Audit expense categories and review service pricing",
	}, true
}

func evaluateGatewayDifferences(rows []GatewayReconciliation) (Alert, bool) {
	differences := DetectDifferences(rows)
	if len(differences) == 0 {
		return Alert{}, false
	}
	return Alert{
		ID:       string(AlertTypeGatewayDifference),
		Type:     AlertTypeGatewayDifference,
		Severity: AlertSeverityCritical,
		Title:    "Gateway settlement mismatches",
		Message: fmt.Sprintf("%d gateway settlement rows differ from the amounts sold",
			len(differences)),
		SuggestedAction: "Reconcile the flagged settlements against gateway statements",
	}, true
}
