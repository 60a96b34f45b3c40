package catalog

import (
	"context"

	auditdomain "github.com/pharmos/backend/internal/domain/audit"
	"github.com/pharmos/backend/internal/domain/catalog"
	"github.com/pharmos/backend/internal/domain/inventory"
	"github.com/pharmos/backend/internal/domain/shared"
	"github.com/pharmos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// AuditRecorder appends audit entries best-effort
type AuditRecorder interface {
	Record(ctx context.Context, tenantID, actorID uuid.UUID, action auditdomain.Action, entityType string, entityID uuid.UUID, details any)
}

// MedicineService handles catalog administration
type MedicineService struct {
	medicines catalog.MedicineRepository
	ledger    inventory.Ledger
	auditor   AuditRecorder
}

// NewMedicineService creates a MedicineService
func NewMedicineService(medicines catalog.MedicineRepository, ledger inventory.Ledger) *MedicineService {
	return &MedicineService{medicines: medicines, ledger: ledger}
}

// SetAuditRecorder sets the best-effort audit channel
func (s *MedicineService) SetAuditRecorder(recorder AuditRecorder) {
	s.auditor = recorder
}

// Create registers a new catalog item with zero stock
func (s *MedicineService) Create(ctx context.Context, tenantID, actorID uuid.UUID, req CreateMedicineRequest) (*MedicineResponse, error) {
	price, err := valueobject.NewMoneyUSDFromString(req.UnitPrice)
	if err != nil {
		return nil, shared.NewDomainError("VALIDATION", "Unit price is not a valid decimal amount")
	}

	if existing, err := s.medicines.FindByCode(ctx, tenantID, req.Code); err == nil && existing != nil {
		return nil, shared.ErrAlreadyExists
	}

	med, err := catalog.NewMedicine(tenantID, req.Name, req.Code, req.Category, price)
	if err != nil {
		return nil, err
	}
	med.SetCreatedBy(actorID)
	if req.ReorderLevel > 0 {
		if err := med.SetReorderLevel(req.ReorderLevel); err != nil {
			return nil, err
		}
	}
	if req.ExpiryDate != nil {
		med.SetExpiryDate(*req.ExpiryDate)
	}

	if err := s.medicines.Save(ctx, med); err != nil {
		return nil, err
	}

	if s.auditor != nil {
		s.auditor.Record(ctx, tenantID, actorID, auditdomain.ActionCreate, "medicine", med.ID, map[string]any{
			"name": med.Name,
			"code": med.Code,
		})
	}

	resp := ToMedicineResponse(med)
	return &resp, nil
}

// GetByID retrieves a catalog item
func (s *MedicineService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*MedicineResponse, error) {
	med, err := s.medicines.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToMedicineResponse(med)
	return &resp, nil
}

// List retrieves catalog items with pagination
func (s *MedicineService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]MedicineResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	items, err := s.medicines.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.medicines.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToMedicineResponses(items), total, nil
}

// ListBelowReorderLevel lists items whose stock has fallen below threshold
func (s *MedicineService) ListBelowReorderLevel(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]MedicineResponse, error) {
	items, err := s.medicines.FindBelowReorderLevel(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	return ToMedicineResponses(items), nil
}

// Restock raises stock through the ledger's atomic increment (procurement
// receiving). The quantity lands as an inbound stock movement.
func (s *MedicineService) Restock(ctx context.Context, tenantID, actorID, medicineID uuid.UUID, quantity int64) (*MedicineResponse, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("VALIDATION", "Restock quantity must be positive")
	}

	// Resolve first so an unknown ID fails with NOT_FOUND, not a silent no-op.
	if _, err := s.medicines.FindByIDForTenant(ctx, tenantID, medicineID); err != nil {
		return nil, err
	}

	if err := s.ledger.Increment(ctx, tenantID, medicineID, quantity, inventory.ReasonRestock, nil); err != nil {
		return nil, err
	}

	if s.auditor != nil {
		s.auditor.Record(ctx, tenantID, actorID, auditdomain.ActionUpdate, "medicine", medicineID, map[string]any{
			"restock_quantity": quantity,
		})
	}

	med, err := s.medicines.FindByIDForTenant(ctx, tenantID, medicineID)
	if err != nil {
		return nil, err
	}
	resp := ToMedicineResponse(med)
	return &resp, nil
}

// UpdatePrice changes the current catalog price
func (s *MedicineService) UpdatePrice(ctx context.Context, tenantID, actorID, medicineID uuid.UUID, price string) (*MedicineResponse, error) {
	money, err := valueobject.NewMoneyUSDFromString(price)
	if err != nil {
		return nil, shared.NewDomainError("VALIDATION", "Unit price is not a valid decimal amount")
	}

	med, err := s.medicines.FindByIDForTenant(ctx, tenantID, medicineID)
	if err != nil {
		return nil, err
	}
	if err := med.UpdatePrice(money); err != nil {
		return nil, err
	}
	if err := s.medicines.Save(ctx, med); err != nil {
		return nil, err
	}

	if s.auditor != nil {
		s.auditor.Record(ctx, tenantID, actorID, auditdomain.ActionUpdate, "medicine", med.ID, map[string]any{
			"unit_price": price,
		})
	}

	resp := ToMedicineResponse(med)
	return &resp, nil
}
