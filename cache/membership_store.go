package cache

import (
	"context"
	"time"

	"github.com/atriumhq/atrium/domain"
)

// MembershipStore caches the membership list of a user to avoid re-querying
// the identity provider on every organization read. It is a cache only:
// membership-mutating operations must invalidate it, and a miss always falls
// back to the provider.
type MembershipStore interface {
	Get(ctx context.Context, userID string) ([]*domain.Membership, bool)
	Set(ctx context.Context, userID string, memberships []*domain.Membership, ttl time.Duration) error
	Invalidate(ctx context.Context, userID string) error
}

// NoopMembershipStore is used when no cache backend is configured. Every Get
// misses, so callers always hit the provider.
type NoopMembershipStore struct{}

func (NoopMembershipStore) Get(context.Context, string) ([]*domain.Membership, bool) {
	return nil, false
}

func (NoopMembershipStore) Set(context.Context, string, []*domain.Membership, time.Duration) error {
	return nil
}

func (NoopMembershipStore) Invalidate(context.Context, string) error { return nil }

var _ MembershipStore = NoopMembershipStore{}
