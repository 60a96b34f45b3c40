package catalog

import (
	"context"

	"github.com/pharmos/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MedicineRepository defines the persistence contract for catalog items
type MedicineRepository interface {
	// FindByIDForTenant finds a medicine by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Medicine, error)
	// FindByIDsForTenant finds multiple medicines by their IDs within a tenant
	FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Medicine, error)
	// FindByCode finds a medicine by its SKU within a tenant
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Medicine, error)
	// FindAllForTenant lists medicines for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Medicine, error)
	// FindBelowReorderLevel lists medicines whose stock has fallen below their threshold
	FindBelowReorderLevel(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Medicine, error)
	// CountForTenant counts medicines for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	// Save creates or updates a medicine. It must never be used to write
	// StockQuantity read-modify-write style; stock changes go through the
	// inventory ledger.
	Save(ctx context.Context, medicine *Medicine) error
	// DeleteForTenant deletes a medicine within a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
