package sales

import (
	"time"

	"github.com/pharmos/backend/internal/domain/sales"
	"github.com/google/uuid"
)

// CheckoutLineInput is one requested (medicine, quantity) pair
type CheckoutLineInput struct {
	MedicineID uuid.UUID
	Quantity   int64
}

// CheckoutRequest is the cart a caller submits to the fulfillment pipeline.
// Lines may be omitted when ShareCode is set; a resolving share code
// replaces any manually entered lines.
type CheckoutRequest struct {
	CustomerID      *uuid.UUID
	ShareCode       *string
	PaymentMethod   sales.PaymentMethod
	PaymentStatus   sales.PaymentStatus
	Lines           []CheckoutLineInput
	ExpenseCategory string // non-empty => order total is posted to this budget category
}

// CheckoutLineResult is one committed line in a successful checkout
type CheckoutLineResult struct {
	LineID       uuid.UUID `json:"line_id"`
	MedicineID   uuid.UUID `json:"medicine_id"`
	MedicineName string    `json:"medicine_name"`
	Quantity     int64     `json:"quantity"`
	UnitPrice    float64   `json:"unit_price"`
	TotalPrice   float64   `json:"total_price"`
}

// CheckoutResult is returned once the pipeline reaches Committed
type CheckoutResult struct {
	OrderID     uuid.UUID            `json:"order_id"`
	OrderNumber string               `json:"order_number"`
	TotalAmount float64              `json:"total_amount"`
	Lines       []CheckoutLineResult `json:"lines"`
}

// OrderLineResponse represents an order line in API responses
type OrderLineResponse struct {
	ID           uuid.UUID `json:"id"`
	MedicineID   uuid.UUID `json:"medicine_id"`
	MedicineName string    `json:"medicine_name"`
	Quantity     int64     `json:"quantity"`
	UnitPrice    float64   `json:"unit_price"`
	Discount     float64   `json:"discount"`
	TotalPrice   float64   `json:"total_price"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID             uuid.UUID           `json:"id"`
	OrderNumber    string              `json:"order_number"`
	CustomerID     *uuid.UUID          `json:"customer_id,omitempty"`
	PrescriptionID *uuid.UUID          `json:"prescription_id,omitempty"`
	Lines          []OrderLineResponse `json:"lines"`
	TotalAmount    float64             `json:"total_amount"`
	PaymentMethod  string              `json:"payment_method"`
	PaymentStatus  string              `json:"payment_status"`
	CreatedAt      time.Time           `json:"created_at"`
}

// ToOrderResponse maps an order aggregate to its API representation
func ToOrderResponse(order *sales.Order) OrderResponse {
	resp := OrderResponse{
		ID:             order.ID,
		OrderNumber:    order.OrderNumber,
		CustomerID:     order.CustomerID,
		PrescriptionID: order.PrescriptionID,
		Lines:          make([]OrderLineResponse, 0, len(order.Lines)),
		TotalAmount:    order.TotalAmount.InexactFloat64(),
		PaymentMethod:  string(order.PaymentMethod),
		PaymentStatus:  string(order.PaymentStatus),
		CreatedAt:      order.CreatedAt,
	}
	for _, line := range order.Lines {
		resp.Lines = append(resp.Lines, OrderLineResponse{
			ID:           line.ID,
			MedicineID:   line.MedicineID,
			MedicineName: line.MedicineName,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice.InexactFloat64(),
			Discount:     line.Discount.InexactFloat64(),
			TotalPrice:   line.TotalPrice.InexactFloat64(),
		})
	}
	return resp
}

// ToOrderResponses maps a slice of orders
func ToOrderResponses(orders []sales.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, ToOrderResponse(&orders[i]))
	}
	return out
}
