package ports

import (
	"context"
	"homerank/internal/domain"
)

// Key-value persistence for provider results addressed by fingerprint.
// Implementations must be safe for concurrent use.
type CacheStore interface {
	// Return the entry, or nil with no error when absent.
	Get(ctx context.Context, fingerprint string) (*domain.CacheEntry, error)
	// Store the entry, replacing any previous one for the fingerprint.
	Put(ctx context.Context, entry domain.CacheEntry) error
}
