package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectDifferences(t *testing.T) {
	rows := []GatewayReconciliation{
		{GatewayName: "stripe", SoldAmount: dec("100.00"), SettledAmount: dec("95.00")},
		{GatewayName: "stripe", SoldAmount: dec("50.00"), SettledAmount: dec("50.00")},
		{GatewayName: "mp", SoldAmount: dec("20.00"), SettledAmount: dec("25.50")},
	}

	got := DetectDifferences(rows)
	if assert.Len(t, got, 2) {
		assert.True(t, got[0].Difference.Equal(dec("5")))
		assert.True(t, got[1].Difference.Equal(dec("-5.5")))
	}
}

func TestDetectDifferences_Tolerance(t *testing.T) {
	tests := []struct {
		name    string
		sold    string
		settled string
		flagged bool
	}{
		{"exact match", "100.00", "100.00", false},
		{"one cent under", "100.00", "99.99", false},
		{"one cent over", "100.00", "100.01", false},
		{"just past tolerance", "100.00", "99.98", true},
		{"settled higher", "100.00", "100.02", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := []GatewayReconciliation{{SoldAmount: dec(tt.sold), SettledAmount: dec(tt.settled)}}
			got := DetectDifferences(rows)
			assert.Equal(t, tt.flagged, len(got) == 1)
		})
	}
}

func TestDetectDifferences_PreservesOrderAndIsIdempotent(t *testing.T) {
	rows := []GatewayReconciliation{
		{GatewayName: "a", SoldAmount: dec("10"), SettledAmount: dec("5")},
		{GatewayName: "b", SoldAmount: dec("10"), SettledAmount: dec("10")},
		{GatewayName: "c", SoldAmount: dec("10"), SettledAmount: dec("7")},
	}

	first := DetectDifferences(rows)
	second := DetectDifferences(rows)

	if assert.Len(t, first, 2) {
		assert.Equal(t, "a", first[0].GatewayName)
		assert.Equal(t, "c", first[1].GatewayName)
	}
	assert.Equal(t, first, second)

	// Input rows keep their zero Difference.
	assert.True(t, rows[0].Difference.IsZero())
}

func TestDetectDifferences_Empty(t *testing.T) {
	assert.Empty(t, DetectDifferences(nil))
	assert.Empty(t, DetectDifferences([]GatewayReconciliation{}))
}
