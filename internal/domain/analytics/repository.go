package analytics

import (
	"context"

	"github.com/google/uuid"
)

// SnapshotFilter scopes a snapshot read to one organization and optionally
// one location. Date filtering never happens at this level: the repository
// always returns full history and the engine windows in memory.
type SnapshotFilter struct {
	OrgID      uuid.UUID
	LocationID *uuid.UUID
}

// SnapshotRepository loads normalized transactional records. Implementations
// own all normalization: canonical dates in zero-padded ISO form and the
// appointment base-price fallback are applied before records leave the
// repository.
type SnapshotRepository interface {
	GetAppointments(ctx context.Context, f SnapshotFilter) ([]Appointment, error)
	GetPayments(ctx context.Context, f SnapshotFilter) ([]Payment, error)
	GetExpenses(ctx context.Context, f SnapshotFilter) ([]Expense, error)
	GetCommissions(ctx context.Context, f SnapshotFilter) ([]Commission, error)
	GetReconciliations(ctx context.Context, f SnapshotFilter) ([]GatewayReconciliation, error)
}
