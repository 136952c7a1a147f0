// Package cache holds the Idempotency-Key response stores used by the HTTP
// layer to replay write requests.
package cache

import (
	"context"
	"time"
)

// IdempotencyRecord is the state of one Idempotency-Key.
// A record that is not Completed is still being processed by its first request.
type IdempotencyRecord struct {
	Fingerprint string `json:"fingerprint"`
	Completed   bool   `json:"completed"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// IdempotencyStore reserves keys and keeps the response of the first request
// made with each key until ttl elapses.
type IdempotencyStore interface {
	// Reserve claims key for a request with the given fingerprint. It returns
	// nil when the caller now owns the key, or the existing record otherwise.
	Reserve(ctx context.Context, key, fingerprint string, ttl time.Duration) (*IdempotencyRecord, error)
	// Complete stores the final response for a reserved key.
	Complete(ctx context.Context, key string, record IdempotencyRecord, ttl time.Duration) error
	// Release drops a reservation so the key can be retried.
	Release(ctx context.Context, key string) error
	Close() error
}
