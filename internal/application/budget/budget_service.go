package budget

import (
	"context"

	"github.com/pharmos/backend/internal/domain/budget"
	"github.com/pharmos/backend/internal/domain/shared"
	"github.com/pharmos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// BudgetService handles budget administration and reads
type BudgetService struct {
	budgets    budget.Repository
	thresholds budget.Thresholds
}

// NewBudgetService creates a BudgetService with the given threshold policy
func NewBudgetService(budgets budget.Repository, thresholds budget.Thresholds) *BudgetService {
	return &BudgetService{budgets: budgets, thresholds: thresholds}
}

// Create registers a new budget allocation for (year, month, category)
func (s *BudgetService) Create(ctx context.Context, tenantID, actorID uuid.UUID, req CreateBudgetRequest) (*BudgetResponse, error) {
	allocated, err := valueobject.NewMoneyUSDFromString(req.Allocated)
	if err != nil {
		return nil, shared.NewDomainError("VALIDATION", "Allocated amount is not a valid decimal amount")
	}

	if existing, err := s.budgets.FindByPeriodAndCategory(ctx, tenantID, req.Year, req.Month, req.Category); err == nil && existing != nil {
		return nil, shared.ErrAlreadyExists
	}

	b, err := budget.NewBudget(tenantID, req.Year, req.Month, req.Category, allocated)
	if err != nil {
		return nil, err
	}
	b.SetCreatedBy(actorID)

	if err := s.budgets.Save(ctx, b); err != nil {
		return nil, err
	}

	resp := ToBudgetResponse(b, s.thresholds)
	return &resp, nil
}

// GetByID retrieves a budget with derived usage and status
func (s *BudgetService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*BudgetResponse, error) {
	b, err := s.budgets.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToBudgetResponse(b, s.thresholds)
	return &resp, nil
}

// List retrieves budgets for a tenant
func (s *BudgetService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]BudgetResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	items, err := s.budgets.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]BudgetResponse, 0, len(items))
	for i := range items {
		out = append(out, ToBudgetResponse(&items[i], s.thresholds))
	}
	return out, nil
}
