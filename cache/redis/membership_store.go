package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/atriumhq/atrium/cache"
	"github.com/atriumhq/atrium/domain"
)

// MembershipStore implements cache.MembershipStore using Redis.
type MembershipStore struct {
	client *redis.Client
	prefix string // Optional prefix for keys
}

// NewMembershipStore creates a new [MembershipStore] instance.
func NewMembershipStore(client *redis.Client, prefix string) *MembershipStore {
	return &MembershipStore{
		client: client,
		prefix: prefix,
	}
}

func (r *MembershipStore) redisKey(userID string) string {
	return fmt.Sprintf("%s:memberships:%s", r.prefix, userID)
}

// Get returns the cached membership list for a user. Any Redis or decode
// failure is treated as a miss; the caller falls back to the provider.
func (r *MembershipStore) Get(ctx context.Context, userID string) ([]*domain.Membership, bool) {
	raw, err := r.client.Get(ctx, r.redisKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("Membership cache read failed")
		}
		return nil, false
	}

	var memberships []*domain.Membership
	if err := json.Unmarshal(raw, &memberships); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Membership cache entry corrupt, dropping")
		_ = r.client.Del(ctx, r.redisKey(userID)).Err()
		return nil, false
	}
	return memberships, true
}

// Set stores a membership list with the given TTL.
func (r *MembershipStore) Set(ctx context.Context, userID string, memberships []*domain.Membership, ttl time.Duration) error {
	raw, err := json.Marshal(memberships)
	if err != nil {
		return fmt.Errorf("failed to marshal memberships: %w", err)
	}
	if err := r.client.Set(ctx, r.redisKey(userID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set memberships in Redis: %w", err)
	}
	return nil
}

// Invalidate drops the cached list for a user.
func (r *MembershipStore) Invalidate(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, r.redisKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate memberships in Redis: %w", err)
	}
	return nil
}

var _ cache.MembershipStore = (*MembershipStore)(nil)
