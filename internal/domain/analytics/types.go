package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AppointmentStatus represents the lifecycle state of an appointment.
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// IsValid checks if the status is a valid AppointmentStatus.
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed,
		AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of AppointmentStatus.
func (s AppointmentStatus) String() string {
	return string(s)
}

// PaymentMethod represents how a payment was collected.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodOther    PaymentMethod = "other"
)

// IsValid checks if the method is a valid PaymentMethod.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod.
func (m PaymentMethod) String() string {
	return string(m)
}

// ExpenseType classifies an expense for cost analysis.
type ExpenseType string

const (
	ExpenseTypeFixed          ExpenseType = "fixed"
	ExpenseTypeVariable       ExpenseType = "variable"
	ExpenseTypeSupplyPurchase ExpenseType = "supply_purchase"
)

// IsValid checks if the type is a valid ExpenseType.
func (t ExpenseType) IsValid() bool {
	switch t {
	case ExpenseTypeFixed, ExpenseTypeVariable, ExpenseTypeSupplyPurchase:
		return true
	}
	return false
}

// ExpensePaymentStatus represents whether an expense has been paid.
type ExpensePaymentStatus string

const (
	ExpensePaymentStatusPending ExpensePaymentStatus = "pending"
	ExpensePaymentStatusPaid    ExpensePaymentStatus = "paid"
	ExpensePaymentStatusPartial ExpensePaymentStatus = "partial"
)

// IsValid checks if the status is a valid ExpensePaymentStatus.
func (s ExpensePaymentStatus) IsValid() bool {
	switch s {
	case ExpensePaymentStatusPending, ExpensePaymentStatusPaid, ExpensePaymentStatusPartial:
		return true
	}
	return false
}

// Appointment is a canonical, already-normalized service appointment.
// TotalAmount carries the service base-price fallback applied at the
// persistence boundary, so no duck-typed fallback logic reaches the engine.
type Appointment struct {
	ID          uuid.UUID         `json:"id"`
	OrgID       uuid.UUID         `json:"org_id"`
	LocationID  *uuid.UUID        `json:"location_id,omitempty"`
	ServiceID   *uuid.UUID        `json:"service_id,omitempty"`
	StylistID   *uuid.UUID        `json:"stylist_id,omitempty"`
	ClientID    *uuid.UUID        `json:"client_id,omitempty"`
	StartsAt    time.Time         `json:"starts_at"`
	Date        Date              `json:"date"` // date portion of StartsAt
	Status      AppointmentStatus `json:"status"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
}

// IsCompleted reports whether the appointment counts toward completed
// revenue.
func (a Appointment) IsCompleted() bool {
	return a.Status == AppointmentStatusCompleted
}

// Payment is a recorded customer payment, optionally linked to an
// appointment and gateway settlement.
type Payment struct {
	ID                      uuid.UUID       `json:"id"`
	OrgID                   uuid.UUID       `json:"org_id"`
	AppointmentID           *uuid.UUID      `json:"appointment_id,omitempty"`
	Amount                  decimal.Decimal `json:"amount"`
	Method                  PaymentMethod   `json:"payment_method"`
	Date                    Date            `json:"date"`
	DiscountAmount          decimal.Decimal `json:"discount_amount"`
	TaxAmount               decimal.Decimal `json:"tax_amount"`
	TipAmount               decimal.Decimal `json:"tip_amount"`
	GatewayFee              decimal.Decimal `json:"gateway_fee"`
	GatewaySettlementDate   Date            `json:"gateway_settlement_date,omitempty"`
	GatewaySettlementAmount decimal.Decimal `json:"gateway_settlement_amount"`
}

// IsSettled reports whether the gateway has settled this payment.
func (p Payment) IsSettled() bool {
	return !p.GatewaySettlementDate.IsZero()
}

// Expense is an operating cost incurred by the business.
type Expense struct {
	ID            uuid.UUID            `json:"id"`
	OrgID         uuid.UUID            `json:"org_id"`
	LocationID    *uuid.UUID           `json:"location_id,omitempty"`
	Amount        decimal.Decimal      `json:"amount"`
	Description   string               `json:"description"`
	Category      string               `json:"category,omitempty"`
	Type          ExpenseType          `json:"type"`
	PaymentStatus ExpensePaymentStatus `json:"payment_status"`
	IncurredAt    Date                 `json:"incurred_at"`
}

// Commission is a staff payout directly tied to revenue-generating events.
type Commission struct {
	ID            uuid.UUID       `json:"id"`
	OrgID         uuid.UUID       `json:"org_id"`
	EmployeeID    uuid.UUID       `json:"employee_id"`
	AppointmentID *uuid.UUID      `json:"appointment_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Rate          decimal.Decimal `json:"commission_rate"` // percentage in [0,100]
	Date          Date            `json:"date"`
}

// GatewayReconciliation is one settlement row reported by a payment gateway.
type GatewayReconciliation struct {
	ID               uuid.UUID       `json:"id"`
	OrgID            uuid.UUID       `json:"org_id"`
	GatewayName      string          `json:"gateway_name"`
	TransactionDate  Date            `json:"transaction_date"`
	SoldAmount       decimal.Decimal `json:"sold_amount"`
	SettledAmount    decimal.Decimal `json:"settled_amount"`
	CreditedAmount   decimal.Decimal `json:"credited_amount"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	Difference       decimal.Decimal `json:"difference"` // nominally sold - settled
	SettlementDate   Date            `json:"settlement_date,omitempty"`
}

// Snapshot is an immutable point-in-time view of all transactional records
// for one organization (optionally scoped to a location upstream). The
// engine only ever reads snapshots and never writes back.
type Snapshot struct {
	Appointments    []Appointment           `json:"appointments"`
	Payments        []Payment               `json:"payments"`
	Expenses        []Expense               `json:"expenses"`
	Commissions     []Commission            `json:"commissions"`
	Reconciliations []GatewayReconciliation `json:"reconciliations"`
}
