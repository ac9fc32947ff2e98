package analytics

import "github.com/shopspring/decimal"

// RevenueBreakdown resolves period revenue from two independent signals:
// the value of completed appointments and the payments actually recorded.
// Either signal can lag the other when front-desk staff complete
// appointments and register payments at different times, so gross revenue
// takes the larger of the two rather than trusting one source.
type RevenueBreakdown struct {
	CompletedAppointmentRevenue decimal.Decimal `json:"completed_appointment_revenue"`
	RecordedPaymentRevenue      decimal.Decimal `json:"recorded_payment_revenue"`
	GrossRevenue                decimal.Decimal `json:"gross_revenue"`
	Discounts                   decimal.Decimal `json:"discounts"`
	Taxes                       decimal.Decimal `json:"taxes"`
	NetRevenue                  decimal.Decimal `json:"net_revenue"`
}

// ReconcileRevenue computes the revenue breakdown for already
// window-filtered appointments and payments.
//
// grossRevenue = max(sum of completed appointment amounts, sum of payment
// amounts). Discount and tax adjustments always come from the payments,
// regardless of which signal won.
func ReconcileRevenue(appointments []Appointment, payments []Payment) RevenueBreakdown {
	completed := decimal.Zero
	for _, a := range appointments {
		if a.IsCompleted() {
			completed = completed.Add(a.TotalAmount)
		}
	}

	recorded := decimal.Zero
	discounts := decimal.Zero
	taxes := decimal.Zero
	for _, p := range payments {
		recorded = recorded.Add(p.Amount)
		discounts = discounts.Add(p.DiscountAmount)
		taxes = taxes.Add(p.TaxAmount)
	}

	gross := completed
	if recorded.GreaterThan(gross) {
		gross = recorded
	}

	return RevenueBreakdown{
		CompletedAppointmentRevenue: completed,
		RecordedPaymentRevenue:      recorded,
		GrossRevenue:                gross,
		Discounts:                   discounts,
		Taxes:                       taxes,
		NetRevenue:                  gross.Sub(discounts).Sub(taxes),
	}
}
