package analytics

import "github.com/shopspring/decimal"

// settlementTolerance absorbs sub-cent rounding noise from gateways.
var settlementTolerance = decimal.NewFromFloat(0.01)

// DetectDifferences returns the reconciliation rows whose settled amount
// deviates from the sold amount by more than the tolerance, preserving
// input order. Each returned row has Difference populated with the
// signed sold-minus-settled delta. The input slice is never mutated, so
// running the check twice over the same rows yields the same result.
func DetectDifferences(rows []GatewayReconciliation) []GatewayReconciliation {
	var flagged []GatewayReconciliation
	for _, row := range rows {
		delta := row.SoldAmount.Sub(row.SettledAmount)
		if delta.Abs().GreaterThan(settlementTolerance) {
			row.Difference = delta
			flagged = append(flagged, row)
		}
	}
	return flagged
}
