package analytics

import (
	"strings"

	"github.com/shopspring/decimal"
)

// fixedCostCategories are the expense categories treated as fixed costs for
// break-even purposes. Spanish aliases are kept because upstream data entry
// mixes both languages.
var fixedCostCategories = map[string]struct{}{
	"rent":     {},
	"alquiler": {},
	"salario":  {},
	"salary":   {},
}

// thirtyDays is the fixed divisor for daily fixed-cost normalization. It
// applies regardless of the actual window length; there is no window-aware
// proration.
var thirtyDays = decimal.NewFromInt(30)

// Margins holds percentage margins derived from the KPI set.
type Margins struct {
	GrossMarginPercent decimal.Decimal `json:"gross_margin_percent"`
	NetMarginPercent   decimal.Decimal `json:"net_margin_percent"`
}

// ComputeMargins derives percentage margins, guarding against non-positive
// net revenue: both percentages are zero whenever netRevenue <= 0.
func ComputeMargins(k KPISet) Margins {
	if !k.NetRevenue.IsPositive() {
		return Margins{GrossMarginPercent: decimal.Zero, NetMarginPercent: decimal.Zero}
	}
	return Margins{
		GrossMarginPercent: k.GrossMargin.Div(k.NetRevenue).Mul(oneHundred),
		NetMarginPercent:   k.NetMargin.Div(k.NetRevenue).Mul(oneHundred),
	}
}

// BreakEven holds the daily cost and revenue figures used for break-even
// charting. BreakEvenPoint carries the same value as DailyFixedCost; chart
// consumers read them as two separate series.
type BreakEven struct {
	DailyFixedCost decimal.Decimal `json:"daily_fixed_cost"`
	BreakEvenPoint decimal.Decimal `json:"break_even_point"`
	DailyRevenue   decimal.Decimal `json:"daily_revenue"`
	Days           int             `json:"days"`
}

// ComputeBreakEven derives the break-even figures from window-filtered
// expenses and the window's gross revenue.
func ComputeBreakEven(expenses []Expense, grossRevenue decimal.Decimal, w Window) BreakEven {
	fixed := decimal.Zero
	for _, e := range expenses {
		category := strings.ToLower(strings.TrimSpace(e.Category))
		if _, ok := fixedCostCategories[category]; ok {
			fixed = fixed.Add(e.Amount)
		}
	}

	dailyFixedCost := fixed.Div(thirtyDays)
	days := w.Days()
	dailyRevenue := grossRevenue.Div(decimal.NewFromInt(int64(days)))

	return BreakEven{
		DailyFixedCost: dailyFixedCost,
		BreakEvenPoint: dailyFixedCost,
		DailyRevenue:   dailyRevenue,
		Days:           days,
	}
}

// Projection is a linear revenue extrapolation from the single period
// average. No seasonality, no regression.
type Projection struct {
	Next30Days decimal.Decimal `json:"next_30_days"`
	Next90Days decimal.Decimal `json:"next_90_days"`
}

// ComputeProjection extrapolates the period's average daily revenue.
func ComputeProjection(dailyRevenue decimal.Decimal) Projection {
	return Projection{
		Next30Days: dailyRevenue.Mul(decimal.NewFromInt(30)),
		Next90Days: dailyRevenue.Mul(decimal.NewFromInt(90)),
	}
}
