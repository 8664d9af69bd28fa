package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList answers whether a still-unexpired token has been revoked.
// The identity service writes revocations; this service only reads them,
// except in tests.
type RevocationList interface {
	IsRevoked(ctx context.Context, claims *Claims) (bool, error)
}

const revocationKeyPrefix = "token:revoked:"

// RedisRevocationList reads revocations from the Redis instance shared with
// the identity service. A JTI key revokes one token; a user key holds a unix
// timestamp before which every token of that user is revoked.
type RedisRevocationList struct {
	client redis.UniversalClient
}

// NewRedisRevocationList wraps an existing Redis client
func NewRedisRevocationList(client redis.UniversalClient) *RedisRevocationList {
	return &RedisRevocationList{client: client}
}

func jtiKey(jti string) string { return revocationKeyPrefix + "jti:" + jti }
func userKey(userID string) string { return revocationKeyPrefix + "user:" + userID }

// Revoke revokes one token until ttl elapses
func (r *RedisRevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := r.client.Set(ctx, jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// RevokeUser revokes every token issued to userID up to now
func (r *RedisRevocationList) RevokeUser(ctx context.Context, userID string, ttl time.Duration) error {
	if err := r.client.Set(ctx, userKey(userID), time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}
	return nil
}

// IsRevoked implements RevocationList
func (r *RedisRevocationList) IsRevoked(ctx context.Context, claims *Claims) (bool, error) {
	if claims.ID != "" {
		exists, err := r.client.Exists(ctx, jtiKey(claims.ID)).Result()
		if err != nil {
			return false, fmt.Errorf("failed to check token revocation: %w", err)
		}
		if exists > 0 {
			return true, nil
		}
	}

	value, err := r.client.Get(ctx, userKey(claims.UserID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user revocation: %w", err)
	}
	cutoff, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse revocation timestamp: %w", err)
	}
	return claims.IssuedAtTime().Unix() <= cutoff, nil
}

var _ RevocationList = (*RedisRevocationList)(nil)

// InMemoryRevocationList is a single-process RevocationList used when Redis is disabled
type InMemoryRevocationList struct {
	mu    sync.Mutex
	jtis  map[string]time.Time
	users map[string]time.Time
	now   func() time.Time
}

// NewInMemoryRevocationList creates an empty list
func NewInMemoryRevocationList() *InMemoryRevocationList {
	return &InMemoryRevocationList{
		jtis:  make(map[string]time.Time),
		users: make(map[string]time.Time),
		now:   time.Now,
	}
}

// Revoke revokes one token until ttl elapses
func (l *InMemoryRevocationList) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.jtis[jti] = l.now().Add(ttl)
	return nil
}

// RevokeUser revokes every token issued to userID up to now
func (l *InMemoryRevocationList) RevokeUser(_ context.Context, userID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.users[userID] = l.now()
	return nil
}

// IsRevoked implements RevocationList
func (l *InMemoryRevocationList) IsRevoked(_ context.Context, claims *Claims) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if until, ok := l.jtis[claims.ID]; ok {
		if l.now().Before(until) {
			return true, nil
		}
		delete(l.jtis, claims.ID)
	}
	if cutoff, ok := l.users[claims.UserID]; ok {
		return !claims.IssuedAtTime().After(cutoff), nil
	}
	return false, nil
}

var _ RevocationList = (*InMemoryRevocationList)(nil)
