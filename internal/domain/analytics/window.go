package analytics

// Window filtering uses one canonical date per entity type:
// Payment -> Date, Expense -> IncurredAt, Commission -> Date,
// Appointment -> date portion of StartsAt, GatewayReconciliation ->
// TransactionDate. Records whose canonical date cannot be derived are
// excluded from windowed results.

// FilterAppointments returns the appointments inside the window.
func FilterAppointments(appointments []Appointment, w Window) []Appointment {
	if w.IsOpen() {
		return appointments
	}
	out := make([]Appointment, 0, len(appointments))
	for _, a := range appointments {
		if w.Contains(a.Date) {
			out = append(out, a)
		}
	}
	return out
}

// FilterPayments returns the payments inside the window.
func FilterPayments(payments []Payment, w Window) []Payment {
	if w.IsOpen() {
		return payments
	}
	out := make([]Payment, 0, len(payments))
	for _, p := range payments {
		if w.Contains(p.Date) {
			out = append(out, p)
		}
	}
	return out
}

// FilterExpenses returns the expenses incurred inside the window.
func FilterExpenses(expenses []Expense, w Window) []Expense {
	if w.IsOpen() {
		return expenses
	}
	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if w.Contains(e.IncurredAt) {
			out = append(out, e)
		}
	}
	return out
}

// FilterCommissions returns the commissions dated inside the window.
func FilterCommissions(commissions []Commission, w Window) []Commission {
	if w.IsOpen() {
		return commissions
	}
	out := make([]Commission, 0, len(commissions))
	for _, c := range commissions {
		if w.Contains(c.Date) {
			out = append(out, c)
		}
	}
	return out
}

// FilterReconciliations returns the gateway rows transacted inside the
// window.
func FilterReconciliations(rows []GatewayReconciliation, w Window) []GatewayReconciliation {
	if w.IsOpen() {
		return rows
	}
	out := make([]GatewayReconciliation, 0, len(rows))
	for _, r := range rows {
		if w.Contains(r.TransactionDate) {
			out = append(out, r)
		}
	}
	return out
}

// Filter returns a snapshot narrowed to the window across all five
// collections.
func (s Snapshot) Filter(w Window) Snapshot {
	if w.IsOpen() {
		return s
	}
	return Snapshot{
		Appointments:    FilterAppointments(s.Appointments, w),
		Payments:        FilterPayments(s.Payments, w),
		Expenses:        FilterExpenses(s.Expenses, w),
		Commissions:     FilterCommissions(s.Commissions, w),
		Reconciliations: FilterReconciliations(s.Reconciliations, w),
	}
}
