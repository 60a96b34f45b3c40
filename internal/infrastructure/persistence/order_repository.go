package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/pharmos/backend/internal/domain/sales"
	"github.com/pharmos/backend/internal/domain/shared"
)

// orderNumberRetries bounds how often CreateHeader regenerates the order
// number after losing a numbering race.
const orderNumberRetries = 3

// GormOrderRepository implements sales.OrderRepository using GORM.
// CreateHeader and CreateLines are separate operations on purpose: the
// checkout coordinator persists them as distinct steps and reports a
// line-persistence failure against an already-durable header rather than
// rolling the header back.
type GormOrderRepository struct {
	db     *gorm.DB
	prefix string
}

// NewGormOrderRepository creates a new GormOrderRepository. prefix is the
// configured order number prefix (e.g. "ORD").
func NewGormOrderRepository(db *gorm.DB, prefix string) *GormOrderRepository {
	if prefix == "" {
		prefix = "ORD"
	}
	return &GormOrderRepository{db: db, prefix: prefix}
}

// CreateHeader persists the order header. Order numbers come from a
// read-then-format sequence, so two concurrent checkouts can produce the
// same number; the unique index on (tenant_id, order_number) rejects the
// loser. Rather than surfacing that as a failed checkout, the loser
// regenerates its number and retries a bounded number of times.
func (r *GormOrderRepository) CreateHeader(ctx context.Context, order *sales.Order) error {
	for attempt := 0; ; attempt++ {
		err := r.db.WithContext(ctx).Create(order).Error
		if err == nil || attempt >= orderNumberRetries || !isOrderNumberConflict(err) {
			return err
		}

		number, genErr := r.GenerateOrderNumber(ctx, order.TenantID)
		if genErr != nil {
			return genErr
		}
		order.OrderNumber = number
	}
}

func isOrderNumberConflict(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" && pqErr.Constraint == "idx_orders_tenant_number"
	}
	return false
}

// CreateLines persists all lines for an already-persisted header in one batch
func (r *GormOrderRepository) CreateLines(ctx context.Context, lines []sales.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

// FindByIDForTenant loads an order with its lines within a tenant
func (r *GormOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, orderID uuid.UUID) (*sales.Order, error) {
	var order sales.Order
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, orderID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	var lines []sales.OrderLine
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	order.Lines = lines

	return &order, nil
}

// FindAllForTenant lists orders for a tenant. Lines are not loaded; list
// views only need header fields.
func (r *GormOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]sales.Order, error) {
	var orders []sales.Order
	query := r.db.WithContext(ctx).Model(&sales.Order{}).
		Where("tenant_id = ?", tenantID)
	query = r.applySearch(query, filter)

	if err := applyFilter(query, filter).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// CountForTenant counts orders for a tenant
func (r *GormOrderRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&sales.Order{}).
		Where("tenant_id = ?", tenantID)
	query = r.applySearch(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateOrderNumber produces the next sequential order number for a
// tenant. Format: ORD-YYYY-NNNNN (e.g. ORD-2026-00001).
func (r *GormOrderRepository) GenerateOrderNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("%s-%d-", r.prefix, year)

	var lastOrder sales.Order
	err := r.db.WithContext(ctx).
		Model(&sales.Order{}).
		Where("tenant_id = ? AND order_number LIKE ?", tenantID, prefix+"%").
		Order("order_number DESC").
		First(&lastOrder).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastOrder.OrderNumber != "" {
		parts := strings.Split(lastOrder.OrderNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	return fmt.Sprintf("%s%05d", prefix, nextNum), nil
}

func (r *GormOrderRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("order_number ILIKE ?", "%"+filter.Search+"%")
	}
	if status, ok := filter.Filters["payment_status"]; ok {
		query = query.Where("payment_status = ?", status)
	}
	if customerID, ok := filter.Filters["customer_id"]; ok {
		query = query.Where("customer_id = ?", customerID)
	}
	return query
}

var _ sales.OrderRepository = (*GormOrderRepository)(nil)
