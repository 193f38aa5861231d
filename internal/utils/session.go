package utils

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "session:revoked:"

// Revocations remembers logged-out token ids until the tokens expire.
// Without a Redis client the list is kept in process memory.
type Revocations struct {
	rdb *redis.Client

	mu    sync.Mutex
	local map[string]time.Time
}

// NewRevocations creates a revocation list backed by rdb, which may be nil.
func NewRevocations(rdb *redis.Client) *Revocations {
	return &Revocations{rdb: rdb, local: make(map[string]time.Time)}
}

// Revoke marks the token id as unusable until expiresAt.
func (r *Revocations) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil // Already expired
	}
	if r.rdb != nil {
		return r.rdb.Set(ctx, revokedPrefix+jti, 1, ttl).Err()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for id, exp := range r.local {
		if now.After(exp) {
			delete(r.local, id)
		}
	}
	r.local[jti] = expiresAt
	return nil
}

// IsRevoked reports whether the token id was revoked.
func (r *Revocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if r.rdb != nil {
		n, err := r.rdb.Exists(ctx, revokedPrefix+jti).Result()
		if err != nil {
			return false, err
		}
		return n > 0, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	exp, ok := r.local[jti]
	return ok && time.Now().Before(exp), nil
}
