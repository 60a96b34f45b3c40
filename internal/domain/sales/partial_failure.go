package sales

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// CheckoutStep names one stage of the checkout saga
type CheckoutStep string

const (
	StepValidating         CheckoutStep = "validating"
	StepPricing            CheckoutStep = "pricing"
	StepClaimingShareCode  CheckoutStep = "claiming_share_code"
	StepPersistingHeader   CheckoutStep = "persisting_header"
	StepPersistingLines    CheckoutStep = "persisting_lines"
	StepAdjustingInventory CheckoutStep = "adjusting_inventory"
	StepPostingBudget      CheckoutStep = "posting_budget"
	StepLoggingAudit       CheckoutStep = "logging_audit"
)

// StepOutcome records how a single saga step ended
type StepOutcome string

const (
	OutcomeOK      StepOutcome = "ok"
	OutcomeFailed  StepOutcome = "failed"
	OutcomeSkipped StepOutcome = "skipped"
)

// LineFailure names one order line whose inventory adjustment failed
type LineFailure struct {
	LineID     uuid.UUID `json:"line_id"`
	MedicineID uuid.UUID `json:"medicine_id"`
	Reason     string    `json:"reason"`
}

// PartialFailure reports that a checkout failed after its first durable
// write. The order header exists; Steps records how far the saga got and
// FailedLines names the lines whose stock decrement did not apply, so a
// caller or repair process can compensate instead of guessing.
//
// This error is never absorbed silently: a checkout either returns
// Committed or surfaces one of these.
type PartialFailure struct {
	OrderID     uuid.UUID                    `json:"order_id"`
	Steps       map[CheckoutStep]StepOutcome `json:"steps"`
	FailedLines []LineFailure                `json:"failed_lines,omitempty"`
	Cause       error                        `json:"-"`
}

// Error implements the error interface
func (e *PartialFailure) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "order %s created but fulfillment incomplete", e.OrderID)
	if len(e.FailedLines) > 0 {
		fmt.Fprintf(&b, " (%d line(s) failed inventory adjustment)", len(e.FailedLines))
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap exposes the underlying cause
func (e *PartialFailure) Unwrap() error {
	return e.Cause
}

// NewPartialFailure creates a PartialFailure for the given order
func NewPartialFailure(orderID uuid.UUID, cause error) *PartialFailure {
	return &PartialFailure{
		OrderID: orderID,
		Steps:   make(map[CheckoutStep]StepOutcome),
		Cause:   cause,
	}
}

// MarkStep records the outcome of a saga step
func (e *PartialFailure) MarkStep(step CheckoutStep, outcome StepOutcome) {
	e.Steps[step] = outcome
}

// AddFailedLine records a line whose stock decrement failed
func (e *PartialFailure) AddFailedLine(lineID, medicineID uuid.UUID, reason string) {
	e.FailedLines = append(e.FailedLines, LineFailure{
		LineID:     lineID,
		MedicineID: medicineID,
		Reason:     reason,
	})
}
