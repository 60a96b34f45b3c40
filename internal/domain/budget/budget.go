package budget

import (
	"time"

	"github.com/pharmos/backend/internal/domain/shared"
	"github.com/pharmos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the derived health band of a budget. It is computed on read
// from the latest spent amount, never stored.
type Status string

const (
	StatusHealthy    Status = "HEALTHY"
	StatusWarning    Status = "WARNING"
	StatusOverBudget Status = "OVER_BUDGET"
)

// Thresholds holds the policy percentages that map usage to a Status.
// The exact bands are a configuration input, not a hard invariant.
type Thresholds struct {
	WarningPercent    decimal.Decimal // usage >= this => WARNING
	OverBudgetPercent decimal.Decimal // usage >= this => OVER_BUDGET
}

// DefaultThresholds returns the default policy (warning at 90%, over at 100%)
func DefaultThresholds() Thresholds {
	return Thresholds{
		WarningPercent:    decimal.NewFromInt(90),
		OverBudgetPercent: decimal.NewFromInt(100),
	}
}

// Budget is a period/category-scoped spending allocation with a running
// spent total. SpentAmount is monotonically non-decreasing and mutated
// only through the repository's atomic PostSpending operation.
type Budget struct {
	shared.TenantAggregateRoot
	Year            int
	Month           int // 1-12
	Category        string
	AllocatedAmount decimal.Decimal `gorm:"type:numeric(14,2)"`
	SpentAmount     decimal.Decimal `gorm:"type:numeric(14,2)"`
}

// NewBudget creates a budget for (tenant, year, month, category)
func NewBudget(tenantID uuid.UUID, year, month int, category string, allocated valueobject.Money) (*Budget, error) {
	if year < 2000 || year > 2200 {
		return nil, shared.NewDomainError("INVALID_YEAR", "Budget year out of range")
	}
	if month < 1 || month > 12 {
		return nil, shared.NewDomainError("INVALID_MONTH", "Budget month must be 1-12")
	}
	if category == "" {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Budget category cannot be empty")
	}
	if !allocated.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Allocated amount must be positive")
	}

	return &Budget{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Year:                year,
		Month:               month,
		Category:            category,
		AllocatedAmount:     allocated.Amount(),
		SpentAmount:         decimal.Zero,
	}, nil
}

// PeriodOf returns the (year, month) pair for a point in time
func PeriodOf(t time.Time) (int, int) {
	return t.Year(), int(t.Month())
}

// RemainingAmount returns allocated minus spent
func (b *Budget) RemainingAmount() decimal.Decimal {
	return b.AllocatedAmount.Sub(b.SpentAmount)
}

// PercentageUsed returns spent/allocated as a percentage
func (b *Budget) PercentageUsed() decimal.Decimal {
	if b.AllocatedAmount.IsZero() {
		return decimal.Zero
	}
	return b.SpentAmount.Mul(decimal.NewFromInt(100)).Div(b.AllocatedAmount).Round(2)
}

// StatusFor derives the health band under the given threshold policy
func (b *Budget) StatusFor(t Thresholds) Status {
	used := b.PercentageUsed()
	switch {
	case used.GreaterThanOrEqual(t.OverBudgetPercent):
		return StatusOverBudget
	case used.GreaterThanOrEqual(t.WarningPercent):
		return StatusWarning
	default:
		return StatusHealthy
	}
}
