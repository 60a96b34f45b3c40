package budget

import (
	"fmt"
	"time"

	"github.com/pharmos/backend/internal/domain/shared"
	"github.com/pharmos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseStatus represents the approval state of an expense
type ExpenseStatus string

const (
	ExpenseStatusPending  ExpenseStatus = "PENDING"
	ExpenseStatusApproved ExpenseStatus = "APPROVED"
	ExpenseStatusRejected ExpenseStatus = "REJECTED"
)

// IsValid checks if the status is a valid ExpenseStatus
func (s ExpenseStatus) IsValid() bool {
	switch s {
	case ExpenseStatusPending, ExpenseStatusApproved, ExpenseStatusRejected:
		return true
	}
	return false
}

// Expense is a spending request against a budget category. Its amount is
// posted to the matching budget's spent total only at approval time, never
// at creation, so spent_amount represents approved obligations only.
type Expense struct {
	shared.TenantAggregateRoot
	Category    string
	Amount      decimal.Decimal `gorm:"type:numeric(14,2)"`
	Description string
	Status      ExpenseStatus
	ApprovedBy  *uuid.UUID
	ApprovedAt  *time.Time
	RejectedAt  *time.Time
}

// NewExpense creates a pending expense
func NewExpense(tenantID uuid.UUID, category, description string, amount valueobject.Money) (*Expense, error) {
	if category == "" {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Expense category cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Expense amount must be positive")
	}

	return &Expense{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Category:            category,
		Amount:              amount.Amount(),
		Description:         description,
		Status:              ExpenseStatusPending,
	}, nil
}

// Approve marks the expense approved. Only pending expenses can be
// approved; posting to the budget is the caller's responsibility and must
// happen exactly once, atomically, after this transition.
func (e *Expense) Approve(approverID uuid.UUID) error {
	if e.Status != ExpenseStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve expense in %s status", e.Status))
	}

	now := time.Now()
	e.Status = ExpenseStatusApproved
	e.ApprovedBy = &approverID
	e.ApprovedAt = &now
	e.UpdatedAt = now

	return nil
}

// Reject marks the expense rejected. Rejected expenses never touch the budget.
func (e *Expense) Reject() error {
	if e.Status != ExpenseStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject expense in %s status", e.Status))
	}

	now := time.Now()
	e.Status = ExpenseStatusRejected
	e.RejectedAt = &now
	e.UpdatedAt = now

	return nil
}
