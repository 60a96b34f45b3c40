package budget

import (
	"time"

	"github.com/pharmos/backend/internal/domain/budget"
	"github.com/google/uuid"
)

// CreateBudgetRequest carries the fields for a new budget allocation
type CreateBudgetRequest struct {
	Year      int
	Month     int
	Category  string
	Allocated string // decimal string, parsed exactly
}

// BudgetResponse represents a budget with its derived usage fields.
// Status and percentages are computed on read so they always reflect the
// latest spent amount.
type BudgetResponse struct {
	ID              uuid.UUID `json:"id"`
	Year            int       `json:"year"`
	Month           int       `json:"month"`
	Category        string    `json:"category"`
	AllocatedAmount float64   `json:"allocated_amount"`
	SpentAmount     float64   `json:"spent_amount"`
	RemainingAmount float64   `json:"remaining_amount"`
	PercentageUsed  float64   `json:"percentage_used"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// ToBudgetResponse maps a budget under the given threshold policy
func ToBudgetResponse(b *budget.Budget, t budget.Thresholds) BudgetResponse {
	return BudgetResponse{
		ID:              b.ID,
		Year:            b.Year,
		Month:           b.Month,
		Category:        b.Category,
		AllocatedAmount: b.AllocatedAmount.InexactFloat64(),
		SpentAmount:     b.SpentAmount.InexactFloat64(),
		RemainingAmount: b.RemainingAmount().InexactFloat64(),
		PercentageUsed:  b.PercentageUsed().InexactFloat64(),
		Status:          string(b.StatusFor(t)),
		CreatedAt:       b.CreatedAt,
	}
}

// CreateExpenseRequest carries the fields for a new expense
type CreateExpenseRequest struct {
	Category    string
	Amount      string // decimal string, parsed exactly
	Description string
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID          uuid.UUID  `json:"id"`
	Category    string     `json:"category"`
	Amount      float64    `json:"amount"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	ApprovedBy  *uuid.UUID `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToExpenseResponse maps an expense to its API representation
func ToExpenseResponse(e *budget.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		Category:    e.Category,
		Amount:      e.Amount.InexactFloat64(),
		Description: e.Description,
		Status:      string(e.Status),
		ApprovedBy:  e.ApprovedBy,
		ApprovedAt:  e.ApprovedAt,
		CreatedAt:   e.CreatedAt,
	}
}
