package inventory

import (
	"time"

	"github.com/pharmos/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MovementReason classifies a stock movement
type MovementReason string

const (
	ReasonSale       MovementReason = "SALE"
	ReasonRestock    MovementReason = "RESTOCK"
	ReasonAdjustment MovementReason = "ADJUSTMENT"
)

// IsValid checks if the reason is a valid MovementReason
func (r MovementReason) IsValid() bool {
	switch r {
	case ReasonSale, ReasonRestock, ReasonAdjustment:
		return true
	}
	return false
}

// StockMovement is an append-only record of one applied stock change.
// Movements are written in the same transaction as the conditional stock
// update, so the movement history always sums to the current quantity.
type StockMovement struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	MedicineID  uuid.UUID
	Delta       int64 // negative for outbound, positive for inbound
	Reason      MovementReason
	ReferenceID *uuid.UUID // order ID for sales, receiving ID for restocks
	CreatedAt   time.Time
}

// NewStockMovement creates a movement record
func NewStockMovement(tenantID, medicineID uuid.UUID, delta int64, reason MovementReason, referenceID *uuid.UUID) (*StockMovement, error) {
	if delta == 0 {
		return nil, shared.NewDomainError("INVALID_DELTA", "Stock movement delta cannot be zero")
	}
	if !reason.IsValid() {
		return nil, shared.NewDomainError("INVALID_REASON", "Unknown stock movement reason")
	}

	return &StockMovement{
		ID:          uuid.New(),
		TenantID:    tenantID,
		MedicineID:  medicineID,
		Delta:       delta,
		Reason:      reason,
		ReferenceID: referenceID,
		CreatedAt:   time.Now(),
	}, nil
}
