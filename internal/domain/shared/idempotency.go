package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which caller-supplied request keys have already
// produced a resource, so that a retried request returns the original result
// instead of repeating its side effects.
type IdempotencyStore interface {
	// Reserve claims key for ttl.
	// Returns false if the key is already reserved or completed.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Complete records the identifier of the resource produced under key.
	Complete(ctx context.Context, key, resourceID string, ttl time.Duration) error

	// Lookup returns the resource identifier recorded under key.
	// It returns "" when the key is unknown or still reserved by an in-flight request.
	Lookup(ctx context.Context, key string) (string, error)

	// Release drops a reservation whose request failed so the caller may retry.
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a completed key is remembered. Default: 24 hours
	TTL time.Duration

	// Enabled determines whether idempotency keys are honoured. Default: true
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
