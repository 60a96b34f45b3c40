package inventory

import (
	"context"

	"github.com/pharmos/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Ledger applies atomic, tenant-scoped stock adjustments to the catalog.
//
// Implementations must express each adjustment as a single conditional
// update at the storage layer ("subtract N where current >= N"), never a
// read-then-write pair: the gap between a read and a write is exactly
// where two concurrent orders can both observe sufficient stock and drive
// it negative.
type Ledger interface {
	// Decrement reduces stock for one medicine by quantity, succeeding only
	// if pre-decrement stock >= quantity. A decrement that loses a race
	// against a concurrent order fails with shared.ErrConcurrencyConflict;
	// stock is left untouched. The applied change is recorded as a
	// StockMovement referencing orderID.
	Decrement(ctx context.Context, tenantID, medicineID uuid.UUID, quantity int64, orderID uuid.UUID) error

	// Increment raises stock for one medicine by quantity (procurement
	// receiving, adjustments). referenceID is optional.
	Increment(ctx context.Context, tenantID, medicineID uuid.UUID, quantity int64, reason MovementReason, referenceID *uuid.UUID) error
}

// MovementRepository defines read access to the append-only movement history
type MovementRepository interface {
	// FindByMedicine lists movements for one medicine, newest first
	FindByMedicine(ctx context.Context, tenantID, medicineID uuid.UUID, filter shared.Filter) ([]StockMovement, error)
	// FindByReference lists movements attached to a reference (e.g. an order)
	FindByReference(ctx context.Context, tenantID, referenceID uuid.UUID) ([]StockMovement, error)
}
