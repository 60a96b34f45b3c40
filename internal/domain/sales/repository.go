package sales

import (
	"context"

	"github.com/pharmos/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderRepository defines the persistence contract for orders.
//
// Header and line persistence are split on purpose: the checkout
// coordinator treats them as distinct saga steps with distinct failure
// modes, so a header can exist durably while its lines are still pending.
type OrderRepository interface {
	// CreateHeader persists the order header (totals, references, payment
	// metadata). First durable side effect of a checkout.
	CreateHeader(ctx context.Context, order *Order) error
	// CreateLines persists all lines for an already-persisted header
	CreateLines(ctx context.Context, lines []OrderLine) error
	// FindByIDForTenant loads an order with its lines within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, orderID uuid.UUID) (*Order, error)
	// FindAllForTenant lists orders for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Order, error)
	// CountForTenant counts orders for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	// GenerateOrderNumber produces the next sequential order number for a tenant
	GenerateOrderNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}
