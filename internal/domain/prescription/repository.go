package prescription

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for prescriptions
type Repository interface {
	// FindByIDForTenant loads a prescription with its lines within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Prescription, error)
	// FindByShareCode resolves an opaque share code within a tenant.
	// Returns shared.ErrShareCodeInvalid when the code does not resolve.
	FindByShareCode(ctx context.Context, tenantID uuid.UUID, code string) (*Prescription, error)
	// Save creates or updates a prescription with its lines
	Save(ctx context.Context, p *Prescription) error
	// ClaimShareCode atomically marks an active, unused share code as
	// consumed by orderID (conditional update from unused to used). A lost
	// claim returns shared.ErrShareCodeInvalid so two concurrent checkouts
	// against one code commit at most once.
	ClaimShareCode(ctx context.Context, tenantID uuid.UUID, code string, orderID uuid.UUID) error
	// ReleaseShareCode undoes a claim whose checkout failed before the
	// order header became durable. Best-effort compensation.
	ReleaseShareCode(ctx context.Context, tenantID uuid.UUID, code string) error
}
