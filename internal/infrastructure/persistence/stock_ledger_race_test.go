package persistence

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pharmos/backend/internal/domain/catalog"
	"github.com/pharmos/backend/internal/domain/inventory"
	"github.com/pharmos/backend/internal/domain/shared"
	"github.com/pharmos/backend/internal/domain/shared/valueobject"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_fk=1"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection serializes transactions; the point under test is
	// the conditional UPDATE guard, not sqlite's locking.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&catalog.Medicine{}, &inventory.StockMovement{}))
	return db
}

func seedMedicine(t *testing.T, db *gorm.DB, tenantID uuid.UUID, stock int64) *catalog.Medicine {
	t.Helper()
	med, err := catalog.NewMedicine(tenantID, "Ibuprofen 200mg", "SKU-IBU-200", catalog.CategoryOTC,
		valueobject.NewMoneyUSD(decimal.RequireFromString("2.40")))
	require.NoError(t, err)
	med.StockQuantity = stock
	require.NoError(t, db.Create(med).Error)
	return med
}

func currentStock(t *testing.T, db *gorm.DB, id uuid.UUID) int64 {
	t.Helper()
	var med catalog.Medicine
	require.NoError(t, db.First(&med, "id = ?", id).Error)
	return med.StockQuantity
}

func TestGormStockLedgerAgainstDatabase(t *testing.T) {
	ctx := context.Background()

	t.Run("decrement consumes stock and appends a movement", func(t *testing.T) {
		db := setupLedgerTestDB(t)
		tenantID := uuid.New()
		med := seedMedicine(t, db, tenantID, 10)
		orderID := uuid.New()

		ledger := NewGormStockLedger(db)
		require.NoError(t, ledger.Decrement(ctx, tenantID, med.ID, 3, orderID))

		assert.Equal(t, int64(7), currentStock(t, db, med.ID))

		movements, err := NewGormStockMovementRepository(db).FindByReference(ctx, tenantID, orderID)
		require.NoError(t, err)
		require.Len(t, movements, 1)
		assert.Equal(t, int64(-3), movements[0].Delta)
		assert.Equal(t, inventory.ReasonSale, movements[0].Reason)
	})

	t.Run("exhausted stock fails the loser without writing anything", func(t *testing.T) {
		db := setupLedgerTestDB(t)
		tenantID := uuid.New()
		med := seedMedicine(t, db, tenantID, 1)

		ledger := NewGormStockLedger(db)
		require.NoError(t, ledger.Decrement(ctx, tenantID, med.ID, 1, uuid.New()))

		loserOrder := uuid.New()
		err := ledger.Decrement(ctx, tenantID, med.ID, 1, loserOrder)
		require.ErrorIs(t, err, shared.ErrConcurrencyConflict)

		assert.Equal(t, int64(0), currentStock(t, db, med.ID))
		movements, findErr := NewGormStockMovementRepository(db).FindByReference(ctx, tenantID, loserOrder)
		require.NoError(t, findErr)
		assert.Empty(t, movements)
	})

	t.Run("racing decrements never drive stock negative", func(t *testing.T) {
		db := setupLedgerTestDB(t)
		tenantID := uuid.New()
		med := seedMedicine(t, db, tenantID, 5)
		ledger := NewGormStockLedger(db)

		var wg sync.WaitGroup
		results := make(chan error, 10)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results <- ledger.Decrement(ctx, tenantID, med.ID, 1, uuid.New())
			}()
		}
		wg.Wait()
		close(results)

		var wins, losses int
		for err := range results {
			if err == nil {
				wins++
				continue
			}
			require.ErrorIs(t, err, shared.ErrConcurrencyConflict)
			losses++
		}
		assert.Equal(t, 5, wins)
		assert.Equal(t, 5, losses)
		assert.Equal(t, int64(0), currentStock(t, db, med.ID))

		var movementSum int64
		require.NoError(t, db.Model(&inventory.StockMovement{}).
			Where("tenant_id = ? AND medicine_id = ?", tenantID, med.ID).
			Select("COALESCE(SUM(delta), 0)").Scan(&movementSum).Error)
		assert.Equal(t, int64(-5), movementSum)
	})

	t.Run("unknown medicine reports not found", func(t *testing.T) {
		db := setupLedgerTestDB(t)
		ledger := NewGormStockLedger(db)

		err := ledger.Decrement(ctx, uuid.New(), uuid.New(), 1, uuid.New())
		require.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("increment restores sold-out stock", func(t *testing.T) {
		db := setupLedgerTestDB(t)
		tenantID := uuid.New()
		med := seedMedicine(t, db, tenantID, 0)
		ledger := NewGormStockLedger(db)

		require.NoError(t, ledger.Increment(ctx, tenantID, med.ID, 25, inventory.ReasonRestock, nil))
		assert.Equal(t, int64(25), currentStock(t, db, med.ID))

		require.NoError(t, ledger.Decrement(ctx, tenantID, med.ID, 25, uuid.New()))
		assert.Equal(t, int64(0), currentStock(t, db, med.ID))
	})
}
