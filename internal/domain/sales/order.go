package sales

import (
	"time"

	"github.com/pharmos/backend/internal/domain/shared"
	"github.com/pharmos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the payment state recorded on an order
type PaymentStatus string

const (
	PaymentStatusPaid      PaymentStatus = "PAID"
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPaid, PaymentStatusPending, PaymentStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// PaymentMethod represents how the order was paid
type PaymentMethod string

const (
	PaymentMethodCash      PaymentMethod = "CASH"
	PaymentMethodCard      PaymentMethod = "CARD"
	PaymentMethodInsurance PaymentMethod = "INSURANCE"
	PaymentMethodMobile    PaymentMethod = "MOBILE"
)

// IsValid checks if the method is a valid PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodInsurance, PaymentMethodMobile:
		return true
	}
	return false
}

// OrderLine is one item-quantity-price entry within an Order.
// UnitPrice is a snapshot of the catalog price at order time, not a live
// reference; historical lines are unaffected by later price changes.
type OrderLine struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	MedicineID   uuid.UUID
	MedicineName string
	Quantity     int64
	UnitPrice    decimal.Decimal `gorm:"type:numeric(14,2)"`
	Discount     decimal.Decimal `gorm:"type:numeric(14,2)"`
	TotalPrice   decimal.Decimal `gorm:"type:numeric(14,2)"`
	CreatedAt    time.Time
}

// NewOrderLine creates a priced order line
func NewOrderLine(orderID, medicineID uuid.UUID, medicineName string, quantity int64, unitPrice valueobject.Money, discount valueobject.Money) (*OrderLine, error) {
	if medicineID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MEDICINE", "Medicine ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if discount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}

	total := unitPrice.MultiplyByInt(quantity).Amount().Sub(discount.Amount())
	if total.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed line amount")
	}

	return &OrderLine{
		ID:           uuid.New(),
		OrderID:      orderID,
		MedicineID:   medicineID,
		MedicineName: medicineName,
		Quantity:     quantity,
		UnitPrice:    unitPrice.Amount(),
		Discount:     discount.Amount(),
		TotalPrice:   total,
		CreatedAt:    time.Now(),
	}, nil
}

// TotalPriceMoney returns the line total as a Money value object
func (l *OrderLine) TotalPriceMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(l.TotalPrice)
}

// Order is a committed request to consume catalog stock in exchange for
// payment. An order is created once, atomically, by the checkout
// coordinator and never mutated afterwards in this pipeline.
type Order struct {
	shared.TenantAggregateRoot
	OrderNumber    string
	CustomerID     *uuid.UUID // optional patient reference
	PrescriptionID *uuid.UUID // optional prescription reference
	Lines          []OrderLine `gorm:"-"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric(14,2)"`
	PaymentMethod  PaymentMethod
	PaymentStatus  PaymentStatus
}

// NewOrder assembles an order from already-priced lines.
// Invariant: TotalAmount equals the exact sum of line totals.
func NewOrder(tenantID uuid.UUID, orderNumber string, method PaymentMethod, status PaymentStatus) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_STATUS", "Unknown payment status")
	}

	return &Order{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderNumber:         orderNumber,
		Lines:               make([]OrderLine, 0),
		TotalAmount:         decimal.Zero,
		PaymentMethod:       method,
		PaymentStatus:       status,
	}, nil
}

// SetCustomer attaches an optional patient reference
func (o *Order) SetCustomer(customerID uuid.UUID) {
	o.CustomerID = &customerID
}

// SetPrescription attaches an optional prescription reference
func (o *Order) SetPrescription(prescriptionID uuid.UUID) {
	o.PrescriptionID = &prescriptionID
}

// AddLine appends a priced line and recomputes the order total
func (o *Order) AddLine(medicineID uuid.UUID, medicineName string, quantity int64, unitPrice, discount valueobject.Money) (*OrderLine, error) {
	for _, line := range o.Lines {
		if line.MedicineID == medicineID {
			return nil, shared.NewDomainError("DUPLICATE_MEDICINE", "Medicine already present in order")
		}
	}

	line, err := NewOrderLine(o.ID, medicineID, medicineName, quantity, unitPrice, discount)
	if err != nil {
		return nil, err
	}

	o.Lines = append(o.Lines, *line)
	o.recalculateTotal()
	o.UpdatedAt = time.Now()

	return line, nil
}

// recalculateTotal recomputes TotalAmount as the exact sum of line totals
func (o *Order) recalculateTotal() {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.TotalPrice)
	}
	o.TotalAmount = total
}

// TotalAmountMoney returns the order total as a Money value object
func (o *Order) TotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(o.TotalAmount)
}

// LineCount returns the number of lines in the order
func (o *Order) LineCount() int {
	return len(o.Lines)
}

// Validate checks the order's internal consistency before persistence
func (o *Order) Validate() error {
	if len(o.Lines) == 0 {
		return shared.NewDomainError("NO_LINES", "Order must contain at least one line")
	}
	sum := decimal.Zero
	for _, line := range o.Lines {
		sum = sum.Add(line.TotalPrice)
	}
	if !sum.Equal(o.TotalAmount) {
		return shared.NewDomainError("TOTAL_MISMATCH", "Order total does not equal sum of line totals")
	}
	return nil
}
