package budget

import (
	"context"
	"fmt"

	auditdomain "github.com/pharmos/backend/internal/domain/audit"
	"github.com/pharmos/backend/internal/domain/budget"
	"github.com/pharmos/backend/internal/domain/shared"
	"github.com/pharmos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// AuditRecorder appends audit entries best-effort
type AuditRecorder interface {
	Record(ctx context.Context, tenantID, actorID uuid.UUID, action auditdomain.Action, entityType string, entityID uuid.UUID, details any)
}

// ExpenseService handles the expense approval flow. An expense's amount
// reaches the budget's spent total only at approval time, through the
// repository's atomic increment, so spent_amount represents approved
// obligations only.
type ExpenseService struct {
	expenses budget.ExpenseRepository
	budgets  budget.Repository
	auditor  AuditRecorder
}

// NewExpenseService creates an ExpenseService
func NewExpenseService(expenses budget.ExpenseRepository, budgets budget.Repository) *ExpenseService {
	return &ExpenseService{expenses: expenses, budgets: budgets}
}

// SetAuditRecorder sets the best-effort audit channel
func (s *ExpenseService) SetAuditRecorder(recorder AuditRecorder) {
	s.auditor = recorder
}

// Create registers a pending expense. Nothing is posted to any budget yet.
func (s *ExpenseService) Create(ctx context.Context, tenantID, actorID uuid.UUID, req CreateExpenseRequest) (*ExpenseResponse, error) {
	amount, err := valueobject.NewMoneyUSDFromString(req.Amount)
	if err != nil {
		return nil, shared.NewDomainError("VALIDATION", "Expense amount is not a valid decimal amount")
	}

	e, err := budget.NewExpense(tenantID, req.Category, req.Description, amount)
	if err != nil {
		return nil, err
	}
	e.SetCreatedBy(actorID)

	if err := s.expenses.Save(ctx, e); err != nil {
		return nil, err
	}

	resp := ToExpenseResponse(e)
	return &resp, nil
}

// Approve transitions a pending expense to approved and posts its amount
// to the matching period budget exactly once.
func (s *ExpenseService) Approve(ctx context.Context, tenantID, approverID, expenseID uuid.UUID) (*ExpenseResponse, error) {
	e, err := s.expenses.FindByIDForTenant(ctx, tenantID, expenseID)
	if err != nil {
		return nil, err
	}

	if err := e.Approve(approverID); err != nil {
		return nil, err
	}

	year, month := budget.PeriodOf(*e.ApprovedAt)
	b, err := s.budgets.FindByPeriodAndCategory(ctx, tenantID, year, month, e.Category)
	if err != nil {
		return nil, fmt.Errorf("no budget for category %q in %d-%02d: %w", e.Category, year, month, err)
	}

	// The conditional transition loses against a concurrent approval, so
	// PostSpending runs at most once per expense.
	if err := s.expenses.MarkApproved(ctx, tenantID, e.ID, approverID, *e.ApprovedAt); err != nil {
		return nil, err
	}
	if err := s.budgets.PostSpending(ctx, tenantID, b.ID, e.Amount); err != nil {
		return nil, err
	}

	if s.auditor != nil {
		s.auditor.Record(ctx, tenantID, approverID, auditdomain.ActionApprove, "expense", e.ID, map[string]any{
			"category": e.Category,
			"amount":   e.Amount.String(),
		})
	}

	resp := ToExpenseResponse(e)
	return &resp, nil
}

// Reject transitions a pending expense to rejected; budgets are untouched
func (s *ExpenseService) Reject(ctx context.Context, tenantID, actorID, expenseID uuid.UUID) (*ExpenseResponse, error) {
	e, err := s.expenses.FindByIDForTenant(ctx, tenantID, expenseID)
	if err != nil {
		return nil, err
	}

	if err := e.Reject(); err != nil {
		return nil, err
	}
	if err := s.expenses.MarkRejected(ctx, tenantID, e.ID, *e.RejectedAt); err != nil {
		return nil, err
	}

	if s.auditor != nil {
		s.auditor.Record(ctx, tenantID, actorID, auditdomain.ActionReject, "expense", e.ID, nil)
	}

	resp := ToExpenseResponse(e)
	return &resp, nil
}

// List retrieves expenses for a tenant
func (s *ExpenseService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ExpenseResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	items, err := s.expenses.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]ExpenseResponse, 0, len(items))
	for i := range items {
		out = append(out, ToExpenseResponse(&items[i]))
	}
	return out, nil
}
