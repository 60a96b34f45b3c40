package audit

import (
	"context"

	"github.com/pharmos/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines the append-only persistence contract for audit entries
type Repository interface {
	// Append persists one entry. There is no update or delete.
	Append(ctx context.Context, entry *Entry) error
	// FindAllForTenant lists entries for a tenant, newest first
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Entry, error)
	// FindByEntity lists entries for one entity
	FindByEntity(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID) ([]Entry, error)
}
