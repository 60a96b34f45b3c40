package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/pharmos/backend/internal/domain/shared"
)

func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
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

	return gormDB, mock, mockDB
}

func TestGormBudgetRepository_PostSpending(t *testing.T) {
	t.Run("posts spending as an in-database addition", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormBudgetRepository(gormDB)

		mock.ExpectExec(`UPDATE "budgets" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.PostSpending(context.Background(), uuid.New(), uuid.New(), decimal.NewFromFloat(125.50))

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for an unknown budget", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormBudgetRepository(gormDB)

		mock.ExpectExec(`UPDATE "budgets" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.PostSpending(context.Background(), uuid.New(), uuid.New(), decimal.NewFromInt(10))

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects non-positive amounts without touching the database", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormBudgetRepository(gormDB)

		err := repo.PostSpending(context.Background(), uuid.New(), uuid.New(), decimal.Zero)

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormExpenseRepository_MarkApproved(t *testing.T) {
	t.Run("approves a pending expense", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormExpenseRepository(gormDB)

		mock.ExpectExec(`UPDATE "expenses" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.MarkApproved(context.Background(), uuid.New(), uuid.New(), uuid.New(), time.Now())

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("loses to a concurrent decision", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormExpenseRepository(gormDB)

		mock.ExpectExec(`UPDATE "expenses" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.MarkApproved(context.Background(), uuid.New(), uuid.New(), uuid.New(), time.Now())

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormExpenseRepository_MarkRejected(t *testing.T) {
	t.Run("rejects a pending expense", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormExpenseRepository(gormDB)

		mock.ExpectExec(`UPDATE "expenses" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.MarkRejected(context.Background(), uuid.New(), uuid.New(), time.Now())

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("loses to a concurrent decision", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormExpenseRepository(gormDB)

		mock.ExpectExec(`UPDATE "expenses" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.MarkRejected(context.Background(), uuid.New(), uuid.New(), time.Now())

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
