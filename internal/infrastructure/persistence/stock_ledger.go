package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pharmos/backend/internal/domain/catalog"
	"github.com/pharmos/backend/internal/domain/inventory"
	"github.com/pharmos/backend/internal/domain/shared"
)

// GormStockLedger implements inventory.Ledger. Every stock change is a
// single conditional UPDATE paired with an append-only movement row in one
// transaction, so the movement history always sums to the current on-hand
// quantity and a decrement can never drive stock below zero, regardless of
// how many checkouts race on the same medicine.
type GormStockLedger struct {
	db *gorm.DB
}

// NewGormStockLedger creates a new GormStockLedger
func NewGormStockLedger(db *gorm.DB) *GormStockLedger {
	return &GormStockLedger{db: db}
}

// Decrement atomically removes quantity units of a medicine's stock for a
// sale. The guard `stock_quantity >= quantity` rides in the UPDATE itself:
// when zero rows match, either the medicine is gone (ErrNotFound) or a
// concurrent sale consumed the stock between validation and commit
// (ErrConcurrencyConflict).
func (l *GormStockLedger) Decrement(ctx context.Context, tenantID, medicineID uuid.UUID, quantity int64, orderID uuid.UUID) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Decrement quantity must be positive")
	}

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&catalog.Medicine{}).
			Where("tenant_id = ? AND id = ? AND stock_quantity >= ?", tenantID, medicineID, quantity).
			Updates(map[string]interface{}{
				"stock_quantity": gorm.Expr("stock_quantity - ?", quantity),
				"updated_at":     time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&catalog.Medicine{}).
				Where("tenant_id = ? AND id = ?", tenantID, medicineID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return shared.ErrNotFound
			}
			return shared.ErrConcurrencyConflict
		}

		movement, err := inventory.NewStockMovement(tenantID, medicineID, -quantity, inventory.ReasonSale, &orderID)
		if err != nil {
			return err
		}
		return tx.Create(movement).Error
	})
}

// Increment atomically adds quantity units of a medicine's stock (restocks,
// manual adjustments). The addition happens in the database, never as a
// read-modify-write of a loaded aggregate.
func (l *GormStockLedger) Increment(ctx context.Context, tenantID, medicineID uuid.UUID, quantity int64, reason inventory.MovementReason, referenceID *uuid.UUID) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Increment quantity must be positive")
	}

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&catalog.Medicine{}).
			Where("tenant_id = ? AND id = ?", tenantID, medicineID).
			Updates(map[string]interface{}{
				"stock_quantity": gorm.Expr("stock_quantity + ?", quantity),
				"updated_at":     time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}

		movement, err := inventory.NewStockMovement(tenantID, medicineID, quantity, reason, referenceID)
		if err != nil {
			return err
		}
		return tx.Create(movement).Error
	})
}

var _ inventory.Ledger = (*GormStockLedger)(nil)

// GormStockMovementRepository implements inventory.MovementRepository
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// FindByMedicine lists movements for one medicine, newest first
func (r *GormStockMovementRepository) FindByMedicine(ctx context.Context, tenantID, medicineID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	query := r.db.WithContext(ctx).Model(&inventory.StockMovement{}).
		Where("tenant_id = ? AND medicine_id = ?", tenantID, medicineID)

	if err := applyFilter(query, filter).Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByReference lists movements recorded against a reference (e.g. an order)
func (r *GormStockMovementRepository) FindByReference(ctx context.Context, tenantID, referenceID uuid.UUID) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND reference_id = ?", tenantID, referenceID).
		Order("created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

var _ inventory.MovementRepository = (*GormStockMovementRepository)(nil)
