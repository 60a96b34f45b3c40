package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmos/backend/internal/domain/sales"
)

func TestGormOrderRepository_GenerateOrderNumber(t *testing.T) {
	t.Run("starts at 00001 when the tenant has no orders this year", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormOrderRepository(gormDB, "ORD")

		mock.ExpectQuery(`SELECT \* FROM "orders"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_number"}))

		number, err := repo.GenerateOrderNumber(context.Background(), uuid.New())

		assert.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("ORD-%d-00001", time.Now().Year()), number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("increments past the highest existing number", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormOrderRepository(gormDB, "ORD")

		year := time.Now().Year()
		mock.ExpectQuery(`SELECT \* FROM "orders"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_number"}).
				AddRow(uuid.New(), fmt.Sprintf("ORD-%d-00042", year)))

		number, err := repo.GenerateOrderNumber(context.Background(), uuid.New())

		assert.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("ORD-%d-00043", year), number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("uses the configured prefix", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormOrderRepository(gormDB, "PHM")

		mock.ExpectQuery(`SELECT \* FROM "orders"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_number"}))

		number, err := repo.GenerateOrderNumber(context.Background(), uuid.New())

		assert.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("PHM-%d-00001", time.Now().Year()), number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_CreateHeader(t *testing.T) {
	newHeader := func(t *testing.T, tenantID uuid.UUID, number string) *sales.Order {
		t.Helper()
		order, err := sales.NewOrder(tenantID, number, sales.PaymentMethodCash, sales.PaymentStatusPending)
		require.NoError(t, err)
		return order
	}
	numberConflict := &pq.Error{Code: "23505", Constraint: "idx_orders_tenant_number"}
	year := time.Now().Year()

	t.Run("inserts the header once when the number is free", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormOrderRepository(gormDB, "ORD")

		mock.ExpectExec(`INSERT INTO "orders"`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.CreateHeader(context.Background(), newHeader(t, uuid.New(), fmt.Sprintf("ORD-%d-00007", year)))

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("regenerates the number after losing a numbering race", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormOrderRepository(gormDB, "ORD")

		// Loser's insert hits the unique index, then sees the winner's
		// committed number and claims the next one.
		mock.ExpectExec(`INSERT INTO "orders"`).
			WillReturnError(numberConflict)
		mock.ExpectQuery(`SELECT \* FROM "orders"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_number"}).
				AddRow(uuid.New(), fmt.Sprintf("ORD-%d-00007", year)))
		mock.ExpectExec(`INSERT INTO "orders"`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		order := newHeader(t, uuid.New(), fmt.Sprintf("ORD-%d-00007", year))
		err := repo.CreateHeader(context.Background(), order)

		assert.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("ORD-%d-00008", year), order.OrderNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("gives up after bounded retries", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormOrderRepository(gormDB, "ORD")

		for i := 0; i <= orderNumberRetries; i++ {
			mock.ExpectExec(`INSERT INTO "orders"`).
				WillReturnError(numberConflict)
			if i < orderNumberRetries {
				mock.ExpectQuery(`SELECT \* FROM "orders"`).
					WillReturnRows(sqlmock.NewRows([]string{"id", "order_number"}))
			}
		}

		err := repo.CreateHeader(context.Background(), newHeader(t, uuid.New(), fmt.Sprintf("ORD-%d-00001", year)))

		var pqErr *pq.Error
		assert.ErrorAs(t, err, &pqErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("does not retry unrelated constraint violations", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormOrderRepository(gormDB, "ORD")

		mock.ExpectExec(`INSERT INTO "orders"`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "orders_pkey"})

		err := repo.CreateHeader(context.Background(), newHeader(t, uuid.New(), fmt.Sprintf("ORD-%d-00001", year)))

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_CreateLines(t *testing.T) {
	t.Run("is a no-op for an empty slice", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormOrderRepository(gormDB, "ORD")

		err := repo.CreateLines(context.Background(), nil)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
