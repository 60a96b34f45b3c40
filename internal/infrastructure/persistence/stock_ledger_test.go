package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/pharmos/backend/internal/domain/inventory"
	"github.com/pharmos/backend/internal/domain/shared"
)

// newMockStockLedger creates a GormStockLedger with a mocked SQL connection
func newMockStockLedger(t *testing.T) (*GormStockLedger, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormStockLedger(gormDB), mock, mockDB
}

func TestGormStockLedger_Decrement(t *testing.T) {
	t.Run("decrements stock and records a movement in one transaction", func(t *testing.T) {
		ledger, mock, mockDB := newMockStockLedger(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		medicineID := uuid.New()
		orderID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "medicines" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "stock_movements"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := ledger.Decrement(context.Background(), tenantID, medicineID, 3, orderID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns concurrency conflict when stock is insufficient", func(t *testing.T) {
		ledger, mock, mockDB := newMockStockLedger(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		medicineID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "medicines" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "medicines"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectRollback()

		err := ledger.Decrement(context.Background(), tenantID, medicineID, 50, uuid.New())

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found when the medicine does not exist", func(t *testing.T) {
		ledger, mock, mockDB := newMockStockLedger(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "medicines" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "medicines"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectRollback()

		err := ledger.Decrement(context.Background(), uuid.New(), uuid.New(), 1, uuid.New())

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects non-positive quantities without touching the database", func(t *testing.T) {
		ledger, mock, mockDB := newMockStockLedger(t)
		defer mockDB.Close()

		err := ledger.Decrement(context.Background(), uuid.New(), uuid.New(), 0, uuid.New())

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back the stock update when the movement insert fails", func(t *testing.T) {
		ledger, mock, mockDB := newMockStockLedger(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "medicines" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "stock_movements"`).
			WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		err := ledger.Decrement(context.Background(), uuid.New(), uuid.New(), 2, uuid.New())

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockLedger_Increment(t *testing.T) {
	t.Run("increments stock and records a restock movement", func(t *testing.T) {
		ledger, mock, mockDB := newMockStockLedger(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "medicines" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "stock_movements"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := ledger.Increment(context.Background(), uuid.New(), uuid.New(), 100, inventory.ReasonRestock, nil)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for an unknown medicine", func(t *testing.T) {
		ledger, mock, mockDB := newMockStockLedger(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "medicines" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := ledger.Increment(context.Background(), uuid.New(), uuid.New(), 10, inventory.ReasonAdjustment, nil)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects non-positive quantities", func(t *testing.T) {
		ledger, mock, mockDB := newMockStockLedger(t)
		defer mockDB.Close()

		err := ledger.Increment(context.Background(), uuid.New(), uuid.New(), -5, inventory.ReasonRestock, nil)

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
