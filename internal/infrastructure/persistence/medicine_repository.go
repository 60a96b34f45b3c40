package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pharmos/backend/internal/domain/catalog"
	"github.com/pharmos/backend/internal/domain/shared"
)

// GormMedicineRepository implements catalog.MedicineRepository using GORM
type GormMedicineRepository struct {
	db *gorm.DB
}

// NewGormMedicineRepository creates a new GormMedicineRepository
func NewGormMedicineRepository(db *gorm.DB) *GormMedicineRepository {
	return &GormMedicineRepository{db: db}
}

// FindByIDForTenant finds a medicine by ID within a tenant
func (r *GormMedicineRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Medicine, error) {
	var medicine catalog.Medicine
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&medicine).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &medicine, nil
}

// FindByIDsForTenant finds multiple medicines by their IDs within a tenant.
// Missing IDs are simply absent from the result; the caller decides whether
// that is an error.
func (r *GormMedicineRepository) FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Medicine, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var medicines []catalog.Medicine
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&medicines).Error; err != nil {
		return nil, err
	}
	return medicines, nil
}

// FindByCode finds a medicine by its SKU within a tenant
func (r *GormMedicineRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*catalog.Medicine, error) {
	var medicine catalog.Medicine
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&medicine).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &medicine, nil
}

// FindAllForTenant lists medicines for a tenant
func (r *GormMedicineRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Medicine, error) {
	var medicines []catalog.Medicine
	query := r.db.WithContext(ctx).Model(&catalog.Medicine{}).
		Where("tenant_id = ?", tenantID)
	query = r.applySearch(query, filter)

	if err := applyFilter(query, filter).Find(&medicines).Error; err != nil {
		return nil, err
	}
	return medicines, nil
}

// FindBelowReorderLevel lists medicines whose stock has fallen below their threshold
func (r *GormMedicineRepository) FindBelowReorderLevel(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Medicine, error) {
	var medicines []catalog.Medicine
	query := r.db.WithContext(ctx).Model(&catalog.Medicine{}).
		Where("tenant_id = ? AND reorder_level > 0 AND stock_quantity < reorder_level", tenantID)

	if err := applyFilter(query, filter).Find(&medicines).Error; err != nil {
		return nil, err
	}
	return medicines, nil
}

// CountForTenant counts medicines for a tenant
func (r *GormMedicineRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&catalog.Medicine{}).
		Where("tenant_id = ?", tenantID)
	query = r.applySearch(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a medicine. Updates deliberately omit
// stock_quantity: the only writers of that column are the inventory
// ledger's conditional updates, so a stale aggregate loaded before a
// concurrent sale can never clobber the on-hand count.
func (r *GormMedicineRepository) Save(ctx context.Context, medicine *catalog.Medicine) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&catalog.Medicine{}).
		Where("tenant_id = ? AND id = ?", medicine.TenantID, medicine.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return r.db.WithContext(ctx).Create(medicine).Error
	}
	return r.db.WithContext(ctx).
		Model(medicine).
		Where("tenant_id = ? AND id = ?", medicine.TenantID, medicine.ID).
		Updates(map[string]interface{}{
			"name":          medicine.Name,
			"code":          medicine.Code,
			"category":      medicine.Category,
			"unit_price":    medicine.UnitPrice,
			"reorder_level": medicine.ReorderLevel,
			"expiry_date":   medicine.ExpiryDate,
			"updated_at":    medicine.UpdatedAt,
		}).Error
}

// DeleteForTenant deletes a medicine within a tenant
func (r *GormMedicineRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Medicine{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormMedicineRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ?", pattern, pattern)
	}
	if category, ok := filter.Filters["category"]; ok {
		query = query.Where("category = ?", category)
	}
	return query
}

var _ catalog.MedicineRepository = (*GormMedicineRepository)(nil)
