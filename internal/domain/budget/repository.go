package budget

import (
	"context"
	"time"

	"github.com/pharmos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository defines the persistence contract for budgets
type Repository interface {
	// FindByIDForTenant finds a budget by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Budget, error)
	// FindByPeriodAndCategory finds the budget for (tenant, year, month, category)
	FindByPeriodAndCategory(ctx context.Context, tenantID uuid.UUID, year, month int, category string) (*Budget, error)
	// FindAllForTenant lists budgets for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Budget, error)
	// Save creates or updates a budget's allocation. It must never be used
	// to write SpentAmount; spending goes through PostSpending.
	Save(ctx context.Context, b *Budget) error
	// PostSpending atomically increases the budget's spent amount
	// ("spent = spent + X" at the storage layer, never read-then-write).
	// Amount must be positive; spent_amount never decreases through this
	// pipeline.
	PostSpending(ctx context.Context, tenantID, budgetID uuid.UUID, amount decimal.Decimal) error
}

// ExpenseRepository defines the persistence contract for expenses
type ExpenseRepository interface {
	// FindByIDForTenant finds an expense by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Expense, error)
	// FindAllForTenant lists expenses for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Expense, error)
	// Save creates or updates an expense
	Save(ctx context.Context, e *Expense) error
	// MarkApproved transitions a pending expense to approved with a single
	// conditional update (status must still be PENDING). Returns
	// shared.ErrConcurrencyConflict when the expense was already decided;
	// that guard is what keeps the budget posting exactly-once.
	MarkApproved(ctx context.Context, tenantID, id, approverID uuid.UUID, at time.Time) error
	// MarkRejected transitions a pending expense to rejected under the same
	// conditional-update contract as MarkApproved.
	MarkRejected(ctx context.Context, tenantID, id uuid.UUID, at time.Time) error
}
