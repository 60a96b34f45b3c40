package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pharmos/backend/internal/domain/prescription"
	"github.com/pharmos/backend/internal/domain/shared"
)

// GormPrescriptionRepository implements prescription.Repository using GORM
type GormPrescriptionRepository struct {
	db *gorm.DB
}

// NewGormPrescriptionRepository creates a new GormPrescriptionRepository
func NewGormPrescriptionRepository(db *gorm.DB) *GormPrescriptionRepository {
	return &GormPrescriptionRepository{db: db}
}

// FindByIDForTenant loads a prescription with its lines within a tenant
func (r *GormPrescriptionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*prescription.Prescription, error) {
	var p prescription.Prescription
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadLines(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByShareCode resolves an opaque share code within a tenant
func (r *GormPrescriptionRepository) FindByShareCode(ctx context.Context, tenantID uuid.UUID, code string) (*prescription.Prescription, error) {
	var p prescription.Prescription
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND share_code = ?", tenantID, code).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrShareCodeInvalid
		}
		return nil, err
	}
	if err := r.loadLines(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormPrescriptionRepository) loadLines(ctx context.Context, p *prescription.Prescription) error {
	var lines []prescription.Line
	if err := r.db.WithContext(ctx).
		Where("prescription_id = ?", p.ID).
		Find(&lines).Error; err != nil {
		return err
	}
	p.Lines = lines
	return nil
}

// Save creates or updates a prescription with its lines
func (r *GormPrescriptionRepository) Save(ctx context.Context, p *prescription.Prescription) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		// Lines are immutable once written; replace wholesale on update
		if err := tx.Where("prescription_id = ?", p.ID).Delete(&prescription.Line{}).Error; err != nil {
			return err
		}
		if len(p.Lines) == 0 {
			return nil
		}
		return tx.Create(&p.Lines).Error
	})
}

// ClaimShareCode atomically marks an active, unused share code as consumed
// by orderID. The unused-and-active guard rides in the UPDATE's WHERE
// clause, so when two checkouts race on one code exactly one row update
// wins; the loser sees zero rows and gets ErrShareCodeInvalid.
func (r *GormPrescriptionRepository) ClaimShareCode(ctx context.Context, tenantID uuid.UUID, code string, orderID uuid.UUID) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&prescription.Prescription{}).
		Where("tenant_id = ? AND share_code = ? AND status = ? AND used_at IS NULL",
			tenantID, code, prescription.StatusActive).
		Updates(map[string]interface{}{
			"used_at":    now,
			"used_by":    orderID,
			"updated_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrShareCodeInvalid
	}
	return nil
}

// ReleaseShareCode undoes a claim whose checkout never produced a durable
// order header, making the code usable again.
func (r *GormPrescriptionRepository) ReleaseShareCode(ctx context.Context, tenantID uuid.UUID, code string) error {
	result := r.db.WithContext(ctx).Model(&prescription.Prescription{}).
		Where("tenant_id = ? AND share_code = ? AND used_at IS NOT NULL", tenantID, code).
		Updates(map[string]interface{}{
			"used_at":    nil,
			"used_by":    nil,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ prescription.Repository = (*GormPrescriptionRepository)(nil)
