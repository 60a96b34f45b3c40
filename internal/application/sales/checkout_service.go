package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	auditdomain "github.com/pharmos/backend/internal/domain/audit"
	"github.com/pharmos/backend/internal/domain/budget"
	"github.com/pharmos/backend/internal/domain/inventory"
	"github.com/pharmos/backend/internal/domain/prescription"
	"github.com/pharmos/backend/internal/domain/sales"
	"github.com/pharmos/backend/internal/domain/shared"
	"github.com/pharmos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ShareCodeResolver resolves an opaque share code to an active
// prescription without persisting anything.
type ShareCodeResolver interface {
	Resolve(ctx context.Context, tenantID uuid.UUID, code string) (*prescription.Prescription, error)
}

// ShareCodeClaimStore is an optional fast-path duplicate-submission guard
// in front of the database claim (e.g. Redis SETNX). The database claim
// remains authoritative.
type ShareCodeClaimStore interface {
	TryClaim(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
	Release(ctx context.Context, tenantID uuid.UUID, code string) error
}

// AuditRecorder appends audit entries best-effort; it never surfaces
// failures to the business operation it describes.
type AuditRecorder interface {
	Record(ctx context.Context, tenantID, actorID uuid.UUID, action auditdomain.Action, entityType string, entityID uuid.UUID, details any)
}

// OrderService runs the order fulfillment pipeline: it turns a cart into
// a committed order while keeping the order record, its lines, catalog
// stock and (optionally) a budget allocation consistent.
//
// The pipeline is a saga, not a transaction: the order header is the
// first durable write, and every failure after it is surfaced as a
// *sales.PartialFailure rather than rolled back; the backing store has
// no multi-table atomicity to lean on.
type OrderService struct {
	pricer        *Pricer
	orders        sales.OrderRepository
	ledger        inventory.Ledger
	budgets       budget.Repository
	prescriptions prescription.Repository
	resolver      ShareCodeResolver
	claims        ShareCodeClaimStore
	auditor       AuditRecorder
	logger        *zap.Logger
}

// NewOrderService creates an OrderService
func NewOrderService(
	pricer *Pricer,
	orders sales.OrderRepository,
	ledger inventory.Ledger,
	budgets budget.Repository,
	prescriptions prescription.Repository,
	resolver ShareCodeResolver,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		pricer:        pricer,
		orders:        orders,
		ledger:        ledger,
		budgets:       budgets,
		prescriptions: prescriptions,
		resolver:      resolver,
		logger:        logger,
	}
}

// SetClaimStore sets the optional share-code claim fast path
func (s *OrderService) SetClaimStore(store ShareCodeClaimStore) {
	s.claims = store
}

// SetAuditRecorder sets the best-effort audit channel
func (s *OrderService) SetAuditRecorder(recorder AuditRecorder) {
	s.auditor = recorder
}

// Checkout executes the fulfillment pipeline for one cart.
//
// Failure semantics:
//   - validation, pricing and share-code resolution failures surface
//     before any durable write; the caller can correct and retry.
//   - once the header is persisted, every later failure (line insert,
//     stock decrement lost to a race, budget posting) is accumulated into
//     a *sales.PartialFailure naming the order and the affected lines.
//   - audit failures are logged and never propagate.
func (s *OrderService) Checkout(ctx context.Context, tenantID, actorID uuid.UUID, req CheckoutRequest) (*CheckoutResult, error) {
	if !req.PaymentMethod.IsValid() {
		return nil, shared.NewDomainError("VALIDATION", "Unknown payment method")
	}
	if !req.PaymentStatus.IsValid() {
		return nil, shared.NewDomainError("VALIDATION", "Unknown payment status")
	}

	// Share-code resolution replaces any manually entered lines.
	lines := req.Lines
	var presc *prescription.Prescription
	if req.ShareCode != nil && *req.ShareCode != "" {
		resolved, err := s.resolver.Resolve(ctx, tenantID, *req.ShareCode)
		if err != nil {
			return nil, err
		}
		presc = resolved
		lines = make([]CheckoutLineInput, 0, len(presc.Lines))
		for _, pl := range presc.Lines {
			lines = append(lines, CheckoutLineInput{MedicineID: pl.MedicineID, Quantity: pl.Quantity})
		}
	}

	priced, total, err := s.pricer.PriceLines(ctx, tenantID, lines)
	if err != nil {
		return nil, err
	}

	// Caller cancellation before the first durable write has zero side effects.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	orderNumber, err := s.orders.GenerateOrderNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	order, err := sales.NewOrder(tenantID, orderNumber, req.PaymentMethod, req.PaymentStatus)
	if err != nil {
		return nil, err
	}
	order.SetCreatedBy(actorID)
	if req.CustomerID != nil {
		order.SetCustomer(*req.CustomerID)
	}
	for _, pl := range priced {
		if _, err := order.AddLine(pl.MedicineID, pl.MedicineName, pl.Quantity, pl.UnitPrice, valueobject.ZeroUSD()); err != nil {
			return nil, err
		}
	}
	if presc != nil {
		order.SetPrescription(presc.ID)
		order.SetCustomer(presc.PatientID)
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}

	// Share codes are single-use: claim before the header so two concurrent
	// checkouts against one code commit at most once. The claim is undone
	// if the header never becomes durable.
	claimed := false
	if presc != nil {
		if err := s.claimShareCode(ctx, tenantID, *req.ShareCode, order.ID); err != nil {
			return nil, err
		}
		claimed = true
	}

	if err := s.orders.CreateHeader(ctx, order); err != nil {
		if claimed {
			s.releaseShareCode(ctx, tenantID, *req.ShareCode)
		}
		return nil, fmt.Errorf("persisting order header: %w", err)
	}

	// The header is durable from here on: no silent aborts, no rollbacks.
	failure := sales.NewPartialFailure(order.ID, nil)
	failure.MarkStep(sales.StepPersistingHeader, sales.OutcomeOK)

	if err := s.orders.CreateLines(ctx, order.Lines); err != nil {
		failure.MarkStep(sales.StepPersistingLines, sales.OutcomeFailed)
		failure.MarkStep(sales.StepAdjustingInventory, sales.OutcomeSkipped)
		failure.MarkStep(sales.StepPostingBudget, sales.OutcomeSkipped)
		failure.Cause = err
		s.logger.Error("order lines not persisted, header is orphaned",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
		return nil, failure
	}
	failure.MarkStep(sales.StepPersistingLines, sales.OutcomeOK)

	// Each line's decrement is independent; outcomes are accumulated, never
	// swallowed. A decrement that loses a race fails with a concurrency
	// conflict while the other lines' changes stand.
	inventoryFailed := false
	for i := range order.Lines {
		line := &order.Lines[i]
		if err := ctx.Err(); err != nil {
			failure.AddFailedLine(line.ID, line.MedicineID, "cancelled before decrement")
			inventoryFailed = true
			continue
		}
		if err := s.ledger.Decrement(ctx, tenantID, line.MedicineID, line.Quantity, order.ID); err != nil {
			failure.AddFailedLine(line.ID, line.MedicineID, err.Error())
			inventoryFailed = true
			s.logger.Warn("stock decrement failed",
				zap.String("order_id", order.ID.String()),
				zap.String("medicine_id", line.MedicineID.String()),
				zap.Error(err))
		}
	}
	if inventoryFailed {
		failure.MarkStep(sales.StepAdjustingInventory, sales.OutcomeFailed)
	} else {
		failure.MarkStep(sales.StepAdjustingInventory, sales.OutcomeOK)
	}

	budgetFailed := false
	if req.ExpenseCategory != "" {
		if err := s.postToBudget(ctx, tenantID, req.ExpenseCategory, total); err != nil {
			budgetFailed = true
			failure.MarkStep(sales.StepPostingBudget, sales.OutcomeFailed)
			if failure.Cause == nil {
				failure.Cause = err
			}
			s.logger.Warn("budget posting failed",
				zap.String("order_id", order.ID.String()),
				zap.String("category", req.ExpenseCategory),
				zap.Error(err))
		} else {
			failure.MarkStep(sales.StepPostingBudget, sales.OutcomeOK)
		}
	} else {
		failure.MarkStep(sales.StepPostingBudget, sales.OutcomeSkipped)
	}

	if s.auditor != nil {
		s.auditor.Record(ctx, tenantID, actorID, auditdomain.ActionCreate, "order", order.ID, map[string]any{
			"order_number": order.OrderNumber,
			"total_amount": order.TotalAmount.String(),
			"line_count":   order.LineCount(),
		})
	}

	if inventoryFailed || budgetFailed {
		return nil, failure
	}

	result := &CheckoutResult{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		TotalAmount: order.TotalAmount.InexactFloat64(),
		Lines:       make([]CheckoutLineResult, 0, len(order.Lines)),
	}
	for _, line := range order.Lines {
		result.Lines = append(result.Lines, CheckoutLineResult{
			LineID:       line.ID,
			MedicineID:   line.MedicineID,
			MedicineName: line.MedicineName,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice.InexactFloat64(),
			TotalPrice:   line.TotalPrice.InexactFloat64(),
		})
	}
	return result, nil
}

// claimShareCode claims the code in the cache fast path (when configured)
// and then authoritatively in the database.
func (s *OrderService) claimShareCode(ctx context.Context, tenantID uuid.UUID, code string, orderID uuid.UUID) error {
	if s.claims != nil {
		ok, err := s.claims.TryClaim(ctx, tenantID, code)
		if err != nil {
			// Cache unavailability must not block checkout; the DB claim decides.
			s.logger.Warn("share code claim cache unavailable", zap.Error(err))
		} else if !ok {
			return shared.ErrShareCodeInvalid
		}
	}
	if err := s.prescriptions.ClaimShareCode(ctx, tenantID, code, orderID); err != nil {
		if s.claims != nil {
			_ = s.claims.Release(ctx, tenantID, code)
		}
		if errors.Is(err, shared.ErrShareCodeInvalid) || errors.Is(err, shared.ErrConcurrencyConflict) {
			return shared.ErrShareCodeInvalid
		}
		return err
	}
	return nil
}

// releaseShareCode compensates a claim whose checkout never persisted a header
func (s *OrderService) releaseShareCode(ctx context.Context, tenantID uuid.UUID, code string) {
	if err := s.prescriptions.ReleaseShareCode(ctx, tenantID, code); err != nil {
		s.logger.Error("failed to release share code claim", zap.Error(err))
	}
	if s.claims != nil {
		_ = s.claims.Release(ctx, tenantID, code)
	}
}

// postToBudget posts the order total to the current period's budget for
// the category via the repository's atomic increment.
func (s *OrderService) postToBudget(ctx context.Context, tenantID uuid.UUID, category string, total valueobject.Money) error {
	year, month := budget.PeriodOf(time.Now())
	b, err := s.budgets.FindByPeriodAndCategory(ctx, tenantID, year, month, category)
	if err != nil {
		return fmt.Errorf("no budget for category %q in %d-%02d: %w", category, year, month, err)
	}
	return s.budgets.PostSpending(ctx, tenantID, b.ID, total.Amount())
}

// GetByID retrieves an order with its lines
func (s *OrderService) GetByID(ctx context.Context, tenantID, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orders.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// List retrieves orders for a tenant with pagination
func (s *OrderService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]OrderResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	orders, err := s.orders.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orders.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToOrderResponses(orders), total, nil
}
