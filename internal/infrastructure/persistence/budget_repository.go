package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pharmos/backend/internal/domain/budget"
	"github.com/pharmos/backend/internal/domain/shared"
)

// GormBudgetRepository implements budget.Repository using GORM
type GormBudgetRepository struct {
	db *gorm.DB
}

// NewGormBudgetRepository creates a new GormBudgetRepository
func NewGormBudgetRepository(db *gorm.DB) *GormBudgetRepository {
	return &GormBudgetRepository{db: db}
}

// FindByIDForTenant finds a budget by ID within a tenant
func (r *GormBudgetRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*budget.Budget, error) {
	var b budget.Budget
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// FindByPeriodAndCategory finds the budget for (tenant, year, month, category)
func (r *GormBudgetRepository) FindByPeriodAndCategory(ctx context.Context, tenantID uuid.UUID, year, month int, category string) (*budget.Budget, error) {
	var b budget.Budget
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND year = ? AND month = ? AND category = ?", tenantID, year, month, category).
		First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// FindAllForTenant lists budgets for a tenant
func (r *GormBudgetRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]budget.Budget, error) {
	var budgets []budget.Budget
	query := r.db.WithContext(ctx).Model(&budget.Budget{}).
		Where("tenant_id = ?", tenantID)
	if year, ok := filter.Filters["year"]; ok {
		query = query.Where("year = ?", year)
	}
	if month, ok := filter.Filters["month"]; ok {
		query = query.Where("month = ?", month)
	}
	if category, ok := filter.Filters["category"]; ok {
		query = query.Where("category = ?", category)
	}

	if err := applyFilter(query, filter).Find(&budgets).Error; err != nil {
		return nil, err
	}
	return budgets, nil
}

// Save creates or updates a budget's allocation. spent_amount is deliberately
// excluded from updates: the only writer of that column is PostSpending.
func (r *GormBudgetRepository) Save(ctx context.Context, b *budget.Budget) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&budget.Budget{}).
		Where("tenant_id = ? AND id = ?", b.TenantID, b.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return r.db.WithContext(ctx).Create(b).Error
	}
	return r.db.WithContext(ctx).
		Model(b).
		Where("tenant_id = ? AND id = ?", b.TenantID, b.ID).
		Updates(map[string]interface{}{
			"allocated_amount": b.AllocatedAmount,
			"updated_at":       b.UpdatedAt,
		}).Error
}

// PostSpending atomically increases the budget's spent amount. The addition
// happens in the database ("spent_amount = spent_amount + X"), never as a
// read-modify-write, so concurrent checkouts and expense approvals posting
// to the same budget cannot lose updates.
func (r *GormBudgetRepository) PostSpending(ctx context.Context, tenantID, budgetID uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Posted amount must be positive")
	}

	result := r.db.WithContext(ctx).Model(&budget.Budget{}).
		Where("tenant_id = ? AND id = ?", tenantID, budgetID).
		Updates(map[string]interface{}{
			"spent_amount": gorm.Expr("spent_amount + ?", amount),
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ budget.Repository = (*GormBudgetRepository)(nil)

// GormExpenseRepository implements budget.ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// FindByIDForTenant finds an expense by ID within a tenant
func (r *GormExpenseRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*budget.Expense, error) {
	var e budget.Expense
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// FindAllForTenant lists expenses for a tenant
func (r *GormExpenseRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]budget.Expense, error) {
	var expenses []budget.Expense
	query := r.db.WithContext(ctx).Model(&budget.Expense{}).
		Where("tenant_id = ?", tenantID)
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if category, ok := filter.Filters["category"]; ok {
		query = query.Where("category = ?", category)
	}

	if err := applyFilter(query, filter).Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

// Save creates or updates an expense
func (r *GormExpenseRepository) Save(ctx context.Context, e *budget.Expense) error {
	return r.db.WithContext(ctx).Save(e).Error
}

// MarkApproved transitions a pending expense to approved with a single
// conditional update. Zero rows means the expense was already decided by a
// concurrent request; the ErrConcurrencyConflict result is what keeps the
// follow-up budget posting exactly-once.
func (r *GormExpenseRepository) MarkApproved(ctx context.Context, tenantID, id, approverID uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&budget.Expense{}).
		Where("tenant_id = ? AND id = ? AND status = ?", tenantID, id, budget.ExpenseStatusPending).
		Updates(map[string]interface{}{
			"status":      budget.ExpenseStatusApproved,
			"approved_by": approverID,
			"approved_at": at,
			"updated_at":  at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// MarkRejected transitions a pending expense to rejected under the same
// conditional-update contract as MarkApproved.
func (r *GormExpenseRepository) MarkRejected(ctx context.Context, tenantID, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&budget.Expense{}).
		Where("tenant_id = ? AND id = ? AND status = ?", tenantID, id, budget.ExpenseStatusPending).
		Updates(map[string]interface{}{
			"status":      budget.ExpenseStatusRejected,
			"rejected_at": at,
			"updated_at":  at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

var _ budget.ExpenseRepository = (*GormExpenseRepository)(nil)
