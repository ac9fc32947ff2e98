package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/salonos/backend/internal/domain/analytics"
	"github.com/salonos/backend/internal/infrastructure/persistence/models"
)

// GormSnapshotRepository implements analytics.SnapshotRepository using GORM.
// All normalization lives here: canonical dates are derived from the best
// available timestamp, appointment amounts fall back to the service base
// price, and enum-ish columns are lowercased. The engine downstream never
// sees a raw row.
type GormSnapshotRepository struct {
	db *gorm.DB
}

// NewGormSnapshotRepository creates a new GormSnapshotRepository
func NewGormSnapshotRepository(db *gorm.DB) *GormSnapshotRepository {
	return &GormSnapshotRepository{db: db}
}

// appointmentRow extends the appointment model with the joined service base
// price used for the amount fallback.
type appointmentRow struct {
	models.AppointmentModel
	ServiceBasePrice *decimal.Decimal `gorm:"column:service_base_price"`
}

// GetAppointments returns normalized appointments for the scope.
func (r *GormSnapshotRepository) GetAppointments(ctx context.Context, f analytics.SnapshotFilter) ([]analytics.Appointment, error) {
	q := r.db.WithContext(ctx).
		Model(&models.AppointmentModel{}).
		Select("appointments.id, appointments.org_id, appointments.location_id, appointments.service_id, appointments.stylist_id, appointments.client_id, appointments.starts_at, appointments.status, appointments.total_amount, services.base_price AS service_base_price").
		Joins("LEFT JOIN services ON services.id = appointments.service_id").
		Where("appointments.org_id = ?", f.OrgID)
	if f.LocationID != nil {
		q = q.Where("appointments.location_id = ?", *f.LocationID)
	}

	var rows []appointmentRow
	if err := q.Order("appointments.starts_at").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]analytics.Appointment, 0, len(rows))
	for _, row := range rows {
		// Appointments saved before checkout often carry no amount; the
		// service base price stands in for them.
		amount := decimal.Zero
		switch {
		case row.TotalAmount != nil && !row.TotalAmount.IsZero():
			amount = *row.TotalAmount
		case row.ServiceBasePrice != nil:
			amount = *row.ServiceBasePrice
		}

		out = append(out, analytics.Appointment{
			ID:          row.ID,
			OrgID:       row.OrgID,
			LocationID:  row.LocationID,
			ServiceID:   row.ServiceID,
			StylistID:   row.StylistID,
			ClientID:    row.ClientID,
			StartsAt:    row.StartsAt,
			Date:        analytics.NewDate(row.StartsAt),
			Status:      analytics.AppointmentStatus(normalizeEnum(row.Status)),
			TotalAmount: amount,
		})
	}
	return out, nil
}

// GetPayments returns normalized payments for the scope. Location scoping
// goes through the linked appointment; payments with no appointment are
// excluded from location-filtered snapshots because they cannot be
// attributed to one.
func (r *GormSnapshotRepository) GetPayments(ctx context.Context, f analytics.SnapshotFilter) ([]analytics.Payment, error) {
	q := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select("payments.id, payments.org_id, payments.appointment_id, payments.amount, payments.method, payments.paid_at, payments.discount_amount, payments.tax_amount, payments.tip_amount, payments.gateway_fee, payments.gateway_settlement_date, payments.gateway_settlement_amount, payments.created_at").
		Where("payments.org_id = ?", f.OrgID)
	if f.LocationID != nil {
		q = q.Joins("JOIN appointments ON appointments.id = payments.appointment_id").
			Where("appointments.location_id = ?", *f.LocationID)
	}

	var rows []models.PaymentModel
	if err := q.Order("payments.created_at").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]analytics.Payment, 0, len(rows))
	for _, row := range rows {
		out = append(out, analytics.Payment{
			ID:                      row.ID,
			OrgID:                   row.OrgID,
			AppointmentID:           row.AppointmentID,
			Amount:                  row.Amount,
			Method:                  analytics.PaymentMethod(normalizeEnum(row.Method)),
			Date:                    canonicalDate(row.PaidAt, row.CreatedAt),
			DiscountAmount:          row.DiscountAmount,
			TaxAmount:               row.TaxAmount,
			TipAmount:               row.TipAmount,
			GatewayFee:              row.GatewayFee,
			GatewaySettlementDate:   dateOrZero(row.GatewaySettlementDate),
			GatewaySettlementAmount: decOrZero(row.GatewaySettlementAmount),
		})
	}
	return out, nil
}

// GetExpenses returns normalized expenses for the scope.
func (r *GormSnapshotRepository) GetExpenses(ctx context.Context, f analytics.SnapshotFilter) ([]analytics.Expense, error) {
	q := r.db.WithContext(ctx).
		Model(&models.ExpenseModel{}).
		Select("id, org_id, location_id, amount, description, category, type, payment_status, incurred_at, created_at").
		Where("org_id = ?", f.OrgID)
	if f.LocationID != nil {
		q = q.Where("location_id = ?", *f.LocationID)
	}

	var rows []models.ExpenseModel
	if err := q.Order("created_at").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]analytics.Expense, 0, len(rows))
	for _, row := range rows {
		out = append(out, analytics.Expense{
			ID:            row.ID,
			OrgID:         row.OrgID,
			LocationID:    row.LocationID,
			Amount:        row.Amount,
			Description:   row.Description,
			Category:      row.Category,
			Type:          analytics.ExpenseType(normalizeEnum(row.Type)),
			PaymentStatus: analytics.ExpensePaymentStatus(normalizeEnum(row.PaymentStatus)),
			IncurredAt:    canonicalDate(row.IncurredAt, row.CreatedAt),
		})
	}
	return out, nil
}

// GetCommissions returns normalized commission payouts for the scope.
// Location scoping goes through the linked appointment.
func (r *GormSnapshotRepository) GetCommissions(ctx context.Context, f analytics.SnapshotFilter) ([]analytics.Commission, error) {
	q := r.db.WithContext(ctx).
		Model(&models.CommissionModel{}).
		Select("commissions.id, commissions.org_id, commissions.employee_id, commissions.appointment_id, commissions.amount, commissions.rate, commissions.earned_at, commissions.created_at").
		Where("commissions.org_id = ?", f.OrgID)
	if f.LocationID != nil {
		q = q.Joins("JOIN appointments ON appointments.id = commissions.appointment_id").
			Where("appointments.location_id = ?", *f.LocationID)
	}

	var rows []models.CommissionModel
	if err := q.Order("commissions.created_at").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]analytics.Commission, 0, len(rows))
	for _, row := range rows {
		out = append(out, analytics.Commission{
			ID:            row.ID,
			OrgID:         row.OrgID,
			EmployeeID:    row.EmployeeID,
			AppointmentID: row.AppointmentID,
			Amount:        row.Amount,
			Rate:          row.Rate,
			Date:          canonicalDate(row.EarnedAt, row.CreatedAt),
		})
	}
	return out, nil
}

// GetReconciliations returns gateway settlement rows for the organization.
// Gateway files carry no location attribution, so the location filter does
// not apply here.
func (r *GormSnapshotRepository) GetReconciliations(ctx context.Context, f analytics.SnapshotFilter) ([]analytics.GatewayReconciliation, error) {
	var rows []models.GatewayReconciliationModel
	err := r.db.WithContext(ctx).
		Model(&models.GatewayReconciliationModel{}).
		Select("id, org_id, gateway_name, transaction_date, sold_amount, settled_amount, credited_amount, commission_amount, settlement_date").
		Where("org_id = ?", f.OrgID).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]analytics.GatewayReconciliation, 0, len(rows))
	for _, row := range rows {
		out = append(out, analytics.GatewayReconciliation{
			ID:               row.ID,
			OrgID:            row.OrgID,
			GatewayName:      row.GatewayName,
			TransactionDate:  dateOrZero(row.TransactionDate),
			SoldAmount:       row.SoldAmount,
			SettledAmount:    row.SettledAmount,
			CreditedAmount:   row.CreditedAmount,
			CommissionAmount: row.CommissionAmount,
			SettlementDate:   dateOrZero(row.SettlementDate),
		})
	}
	return out, nil
}

// canonicalDate picks the business timestamp when present, the row creation
// time otherwise.
func canonicalDate(primary *time.Time, fallback time.Time) analytics.Date {
	if primary != nil && !primary.IsZero() {
		return analytics.NewDate(*primary)
	}
	return analytics.NewDate(fallback)
}

func dateOrZero(t *time.Time) analytics.Date {
	if t == nil {
		return ""
	}
	return analytics.NewDate(*t)
}

func decOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func normalizeEnum(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
