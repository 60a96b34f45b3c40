package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmos/backend/internal/application/sales"
)

// Both implementations must satisfy the checkout pipeline's claim contract.
var (
	_ sales.ShareCodeClaimStore = (*RedisShareCodeClaimStore)(nil)
	_ sales.ShareCodeClaimStore = (*InMemoryShareCodeClaimStore)(nil)
)

func TestInMemoryShareCodeClaimStore_TryClaim(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	store := NewInMemoryShareCodeClaimStore(time.Hour)

	ok, err := store.TryClaim(ctx, tenantID, "RX-ABC123")
	require.NoError(t, err)
	assert.True(t, ok)

	// Second claim on the same code loses
	ok, err = store.TryClaim(ctx, tenantID, "RX-ABC123")
	require.NoError(t, err)
	assert.False(t, ok)

	// Same code under a different tenant is independent
	ok, err = store.TryClaim(ctx, uuid.New(), "RX-ABC123")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInMemoryShareCodeClaimStore_Release(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	store := NewInMemoryShareCodeClaimStore(time.Hour)

	ok, err := store.TryClaim(ctx, tenantID, "RX-ABC123")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, store.Release(ctx, tenantID, "RX-ABC123"))

	ok, err = store.TryClaim(ctx, tenantID, "RX-ABC123")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInMemoryShareCodeClaimStore_Expiry(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	store := NewInMemoryShareCodeClaimStore(time.Millisecond)

	ok, err := store.TryClaim(ctx, tenantID, "RX-ABC123")
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(5 * time.Millisecond)

	// Expired claims do not block a retry
	ok, err = store.TryClaim(ctx, tenantID, "RX-ABC123")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInMemoryShareCodeClaimStore_ConcurrentClaims(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	store := NewInMemoryShareCodeClaimStore(time.Hour)

	const goroutines = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.TryClaim(ctx, tenantID, "RX-RACE")
			require.NoError(t, err)
			if ok {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners, "exactly one concurrent claim should win")
}
