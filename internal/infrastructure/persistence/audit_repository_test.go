package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pharmos/backend/internal/domain/audit"
	"github.com/pharmos/backend/internal/domain/shared"
)

func setupAuditTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&audit.Entry{}))
	return db
}

func appendEntry(t *testing.T, repo *GormAuditRepository, tenantID uuid.UUID, action audit.Action, entityType string, entityID uuid.UUID, at time.Time) *audit.Entry {
	t.Helper()
	entry, err := audit.NewEntry(tenantID, uuid.New(), action, entityType, entityID, nil)
	require.NoError(t, err)
	entry.CreatedAt = at
	require.NoError(t, repo.Append(context.Background(), entry))
	return entry
}

func TestGormAuditRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("entries list newest first within a tenant", func(t *testing.T) {
		repo := NewGormAuditRepository(setupAuditTestDB(t))
		tenantID := uuid.New()
		base := time.Date(2026, time.August, 1, 10, 0, 0, 0, time.UTC)

		first := appendEntry(t, repo, tenantID, audit.ActionCreate, "order", uuid.New(), base)
		second := appendEntry(t, repo, tenantID, audit.ActionUpdate, "medicine", uuid.New(), base.Add(time.Hour))
		appendEntry(t, repo, uuid.New(), audit.ActionCreate, "order", uuid.New(), base) // other tenant

		entries, err := repo.FindAllForTenant(ctx, tenantID, shared.Filter{Page: 1, PageSize: 10})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, second.ID, entries[0].ID)
		assert.Equal(t, first.ID, entries[1].ID)
	})

	t.Run("action and entity type filters narrow the listing", func(t *testing.T) {
		repo := NewGormAuditRepository(setupAuditTestDB(t))
		tenantID := uuid.New()
		base := time.Date(2026, time.August, 1, 10, 0, 0, 0, time.UTC)

		appendEntry(t, repo, tenantID, audit.ActionCreate, "order", uuid.New(), base)
		appendEntry(t, repo, tenantID, audit.ActionApprove, "expense", uuid.New(), base.Add(time.Minute))

		entries, err := repo.FindAllForTenant(ctx, tenantID, shared.Filter{
			Page: 1, PageSize: 10,
			Filters: map[string]any{"action": "APPROVE"},
		})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, audit.ActionApprove, entries[0].Action)

		entries, err = repo.FindAllForTenant(ctx, tenantID, shared.Filter{
			Page: 1, PageSize: 10,
			Filters: map[string]any{"entity_type": "order"},
		})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "order", entries[0].EntityType)
	})

	t.Run("entity history lists oldest first", func(t *testing.T) {
		repo := NewGormAuditRepository(setupAuditTestDB(t))
		tenantID := uuid.New()
		entityID := uuid.New()
		base := time.Date(2026, time.August, 1, 10, 0, 0, 0, time.UTC)

		created := appendEntry(t, repo, tenantID, audit.ActionCreate, "medicine", entityID, base)
		updated := appendEntry(t, repo, tenantID, audit.ActionUpdate, "medicine", entityID, base.Add(time.Hour))
		appendEntry(t, repo, tenantID, audit.ActionUpdate, "medicine", uuid.New(), base) // other entity

		entries, err := repo.FindByEntity(ctx, tenantID, "medicine", entityID)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, created.ID, entries[0].ID)
		assert.Equal(t, updated.ID, entries[1].ID)
	})
}
