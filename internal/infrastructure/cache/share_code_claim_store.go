package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisShareCodeClaimStore is a fast-path duplicate-submission guard for
// prescription share codes, backed by Redis SETNX. It sits in front of the
// database claim, which stays authoritative: a cache miss or Redis outage
// only means the race is decided by the conditional update in the database.
type RedisShareCodeClaimStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisShareCodeClaimStore creates a claim store sharing an existing
// Redis client. ttl bounds how long a claim key lingers when the order that
// claimed it is never completed.
func NewRedisShareCodeClaimStore(client *redis.Client, ttl time.Duration) *RedisShareCodeClaimStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisShareCodeClaimStore{
		client:    client,
		keyPrefix: "sharecode:claim:",
		ttl:       ttl,
	}
}

func (s *RedisShareCodeClaimStore) key(tenantID uuid.UUID, code string) string {
	return s.keyPrefix + tenantID.String() + ":" + code
}

// TryClaim atomically claims the share code for this tenant. Returns false
// when another checkout already holds the claim.
func (s *RedisShareCodeClaimStore) TryClaim(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.key(tenantID, code), "1", s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim share code: %w", err)
	}
	return ok, nil
}

// Release drops the claim so the code can be retried after a failed checkout
func (s *RedisShareCodeClaimStore) Release(ctx context.Context, tenantID uuid.UUID, code string) error {
	if err := s.client.Del(ctx, s.key(tenantID, code)).Err(); err != nil {
		return fmt.Errorf("failed to release share code claim: %w", err)
	}
	return nil
}
