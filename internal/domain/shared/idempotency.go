package shared

import (
	"context"
	"time"
)

// IdempotentResponse is a completed response kept for replay under an Idempotency-Key
type IdempotentResponse struct {
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// IdempotencyStore keeps request keys so that a retried non-idempotent request
// (conversion, sale creation) replays the first response instead of running twice.
type IdempotencyStore interface {
	// Reserve claims key as in flight.
	// Returns false if the key is already reserved or completed.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Complete stores the final response for key
	Complete(ctx context.Context, key string, resp IdempotentResponse, ttl time.Duration) error

	// Lookup returns the stored response, or nil while the key is still in flight or unknown
	Lookup(ctx context.Context, key string) (*IdempotentResponse, error)

	// Release drops a reservation so the request may be retried
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a key is remembered
	// Default: 24 hours
	TTL time.Duration

	// Enabled determines whether Idempotency-Key headers are honoured
	// Default: true
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
