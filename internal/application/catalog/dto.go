package catalog

import (
	"time"

	"github.com/pharmos/backend/internal/domain/catalog"
	"github.com/google/uuid"
)

// CreateMedicineRequest carries the fields for a new catalog item
type CreateMedicineRequest struct {
	Name         string
	Code         string
	Category     catalog.MedicineCategory
	UnitPrice    string // decimal string, parsed exactly
	ReorderLevel int64
	ExpiryDate   *time.Time
}

// MedicineResponse represents a catalog item in API responses
type MedicineResponse struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Code          string     `json:"code"`
	Category      string     `json:"category"`
	UnitPrice     float64    `json:"unit_price"`
	StockQuantity int64      `json:"stock_quantity"`
	ReorderLevel  int64      `json:"reorder_level"`
	BelowReorder  bool       `json:"below_reorder"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ToMedicineResponse maps a medicine to its API representation
func ToMedicineResponse(m *catalog.Medicine) MedicineResponse {
	return MedicineResponse{
		ID:            m.ID,
		Name:          m.Name,
		Code:          m.Code,
		Category:      string(m.Category),
		UnitPrice:     m.UnitPrice.InexactFloat64(),
		StockQuantity: m.StockQuantity,
		ReorderLevel:  m.ReorderLevel,
		BelowReorder:  m.IsBelowReorderLevel(),
		ExpiryDate:    m.ExpiryDate,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// ToMedicineResponses maps a slice of medicines
func ToMedicineResponses(items []catalog.Medicine) []MedicineResponse {
	out := make([]MedicineResponse, 0, len(items))
	for i := range items {
		out = append(out, ToMedicineResponse(&items[i]))
	}
	return out
}
