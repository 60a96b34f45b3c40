package sales

import (
	"context"
	"fmt"

	"github.com/pharmos/backend/internal/domain/catalog"
	"github.com/pharmos/backend/internal/domain/shared"
	"github.com/pharmos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// PricedLine is the output of validation and pricing for one cart line
type PricedLine struct {
	MedicineID   uuid.UUID
	MedicineName string
	Quantity     int64
	UnitPrice    valueobject.Money
}

// Pricer validates cart lines against the catalog and computes totals.
// It is a pure read-and-compute stage: it never mutates stock. The stock
// check here is advisory (validation-time); the authoritative check is the
// ledger's conditional decrement.
type Pricer struct {
	medicines catalog.MedicineRepository
}

// NewPricer creates a Pricer backed by the catalog
func NewPricer(medicines catalog.MedicineRepository) *Pricer {
	return &Pricer{medicines: medicines}
}

// PriceLines resolves each (medicine, quantity) pair to a priced line and
// returns the order total as the exact decimal sum of line amounts.
func (p *Pricer) PriceLines(ctx context.Context, tenantID uuid.UUID, inputs []CheckoutLineInput) ([]PricedLine, valueobject.Money, error) {
	if len(inputs) == 0 {
		return nil, valueobject.ZeroUSD(), shared.NewDomainError("VALIDATION", "Order must contain at least one line")
	}

	seen := make(map[uuid.UUID]bool, len(inputs))
	priced := make([]PricedLine, 0, len(inputs))
	total := valueobject.ZeroUSD()

	for _, input := range inputs {
		if input.Quantity <= 0 {
			return nil, valueobject.ZeroUSD(), shared.NewDomainError("VALIDATION", "Line quantity must be positive")
		}
		if seen[input.MedicineID] {
			return nil, valueobject.ZeroUSD(), shared.NewDomainError("VALIDATION", "Duplicate medicine in cart")
		}
		seen[input.MedicineID] = true

		med, err := p.medicines.FindByIDForTenant(ctx, tenantID, input.MedicineID)
		if err != nil {
			if err == shared.ErrNotFound {
				return nil, valueobject.ZeroUSD(), shared.NewDomainError("NOT_FOUND",
					fmt.Sprintf("Medicine %s not found", input.MedicineID))
			}
			return nil, valueobject.ZeroUSD(), err
		}

		if input.Quantity > med.StockQuantity {
			return nil, valueobject.ZeroUSD(), shared.NewDomainError("INSUFFICIENT_STOCK",
				fmt.Sprintf("Insufficient stock for %s: requested %d, available %d", med.Name, input.Quantity, med.StockQuantity))
		}

		unitPrice := med.UnitPriceMoney()
		priced = append(priced, PricedLine{
			MedicineID:   med.ID,
			MedicineName: med.Name,
			Quantity:     input.Quantity,
			UnitPrice:    unitPrice,
		})
		total = total.MustAdd(unitPrice.MultiplyByInt(input.Quantity))
	}

	return priced, total, nil
}
