package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transactional row models for the analytics snapshot. Columns mirror what
// the booking and point-of-sale flows actually write, including the gaps:
// nullable amounts and timestamps are normalized on the way into the domain,
// never here.

// AppointmentModel is the persistence model for booked appointments.
type AppointmentModel struct {
	ID          uuid.UUID        `gorm:"type:uuid;primary_key"`
	OrgID       uuid.UUID        `gorm:"type:uuid;not null;index:idx_appointments_org_starts"`
	LocationID  *uuid.UUID       `gorm:"type:uuid;index"`
	ServiceID   *uuid.UUID       `gorm:"type:uuid;index"`
	StylistID   *uuid.UUID       `gorm:"type:uuid;index"`
	ClientID    *uuid.UUID       `gorm:"type:uuid;index"`
	StartsAt    time.Time        `gorm:"not null;index:idx_appointments_org_starts,priority:2"`
	Status      string           `gorm:"type:varchar(20);not null;default:'pending';index"`
	TotalAmount *decimal.Decimal `gorm:"type:decimal(18,4)"`
	CreatedAt   time.Time        `gorm:"not null"`
	UpdatedAt   time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AppointmentModel) TableName() string {
	return "appointments"
}

// PaymentModel is the persistence model for recorded customer payments.
type PaymentModel struct {
	ID                      uuid.UUID        `gorm:"type:uuid;primary_key"`
	OrgID                   uuid.UUID        `gorm:"type:uuid;not null;index"`
	AppointmentID           *uuid.UUID       `gorm:"type:uuid;index"`
	Amount                  decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Method                  string           `gorm:"type:varchar(20);not null;default:'other'"`
	PaidAt                  *time.Time       `gorm:"index"`
	DiscountAmount          decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount               decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	TipAmount               decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	GatewayFee              decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	GatewaySettlementDate   *time.Time       `gorm:"index"`
	GatewaySettlementAmount *decimal.Decimal `gorm:"type:decimal(18,4)"`
	CreatedAt               time.Time        `gorm:"not null"`
	UpdatedAt               time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ExpenseModel is the persistence model for operating expenses.
type ExpenseModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrgID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	LocationID    *uuid.UUID      `gorm:"type:uuid;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Description   string          `gorm:"type:varchar(500)"`
	Category      string          `gorm:"type:varchar(100);index"`
	Type          string          `gorm:"type:varchar(20);not null;default:'variable'"`
	PaymentStatus string          `gorm:"type:varchar(20);not null;default:'pending'"`
	IncurredAt    *time.Time      `gorm:"index"`
	CreatedAt     time.Time       `gorm:"not null"`
	UpdatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// CommissionModel is the persistence model for staff commission payouts.
type CommissionModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrgID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	EmployeeID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	AppointmentID *uuid.UUID      `gorm:"type:uuid;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Rate          decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0"`
	EarnedAt      *time.Time      `gorm:"index"`
	CreatedAt     time.Time       `gorm:"not null"`
	UpdatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CommissionModel) TableName() string {
	return "commissions"
}

// GatewayReconciliationModel is the persistence model for imported gateway
// settlement rows.
type GatewayReconciliationModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrgID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	GatewayName      string          `gorm:"type:varchar(100);not null"`
	TransactionDate  *time.Time      `gorm:"index"`
	SoldAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SettledAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreditedAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CommissionAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SettlementDate   *time.Time
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (GatewayReconciliationModel) TableName() string {
	return "gateway_reconciliations"
}

// ServiceModel is the persistence model for the service catalog. The base
// price backs the appointment amount fallback.
type ServiceModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrgID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name            string          `gorm:"type:varchar(200);not null"`
	BasePrice       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DurationMinutes int             `gorm:"not null;default:30"`
	Active          bool            `gorm:"not null;default:true"`
	CreatedAt       time.Time       `gorm:"not null"`
	UpdatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ServiceModel) TableName() string {
	return "services"
}
