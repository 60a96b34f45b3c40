package catalog

import (
	"time"

	"github.com/pharmos/backend/internal/domain/shared"
	"github.com/pharmos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MedicineCategory classifies a catalog item for budgeting and reporting
type MedicineCategory string

const (
	CategoryPrescription MedicineCategory = "PRESCRIPTION"
	CategoryOTC          MedicineCategory = "OTC"
	CategorySupplement   MedicineCategory = "SUPPLEMENT"
	CategoryEquipment    MedicineCategory = "EQUIPMENT"
	CategoryOther        MedicineCategory = "OTHER"
)

// IsValid checks if the category is a valid MedicineCategory
func (c MedicineCategory) IsValid() bool {
	switch c {
	case CategoryPrescription, CategoryOTC, CategorySupplement, CategoryEquipment, CategoryOther:
		return true
	}
	return false
}

// String returns the string representation of MedicineCategory
func (c MedicineCategory) String() string {
	return string(c)
}

// Medicine is a stock-bearing catalog item available for sale.
// StockQuantity is adjusted exclusively through the inventory ledger's
// atomic operations; it is never overwritten from a previously-read value.
type Medicine struct {
	shared.TenantAggregateRoot
	Name          string
	Code          string // SKU, unique per tenant
	Category      MedicineCategory
	UnitPrice     decimal.Decimal `gorm:"type:numeric(14,2)"`
	StockQuantity int64           // units on hand, never negative
	ReorderLevel  int64           // restock threshold
	ExpiryDate    *time.Time
}

// NewMedicine creates a new catalog item
func NewMedicine(tenantID uuid.UUID, name, code string, category MedicineCategory, unitPrice valueobject.Money) (*Medicine, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Medicine name cannot be empty")
	}
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Medicine code cannot be empty")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Unknown medicine category")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &Medicine{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Code:                code,
		Category:            category,
		UnitPrice:           unitPrice.Amount(),
	}, nil
}

// UpdatePrice changes the current catalog price.
// Historical order lines keep their snapshot price and are unaffected.
func (m *Medicine) UpdatePrice(price valueobject.Money) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	m.UnitPrice = price.Amount()
	m.UpdatedAt = time.Now()
	return nil
}

// SetReorderLevel sets the restock threshold
func (m *Medicine) SetReorderLevel(level int64) error {
	if level < 0 {
		return shared.NewDomainError("INVALID_REORDER_LEVEL", "Reorder level cannot be negative")
	}
	m.ReorderLevel = level
	m.UpdatedAt = time.Now()
	return nil
}

// SetExpiryDate sets the expiry date for perishable stock
func (m *Medicine) SetExpiryDate(t time.Time) {
	m.ExpiryDate = &t
	m.UpdatedAt = time.Now()
}

// IsBelowReorderLevel returns true when on-hand stock has fallen below the threshold
func (m *Medicine) IsBelowReorderLevel() bool {
	return m.ReorderLevel > 0 && m.StockQuantity < m.ReorderLevel
}

// UnitPriceMoney returns the current price as a Money value object
func (m *Medicine) UnitPriceMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(m.UnitPrice)
}
