// Package provider defines the storage abstraction behind an ixcache Store.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// same []byte that was previously passed to Set for a key (no prepended/appended
// metadata, no re-encoding, no mutation).
package provider

import (
	"context"
	"errors"
	"time"
)

// ErrRejected is returned by Set when the store declined the write
// (e.g. admission refused under memory pressure).
var ErrRejected = errors.New("provider: write rejected")

// Provider is a minimal byte store with TTLs.
// A Store serializes its calls, but implementations must still be safe for
// concurrent use when shared.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key and (re)sets its expiry to ttl, as one
	// operation: when Set fails the key must not be left holding value
	// without the expiry. A later Set for the same key overwrites the value
	// and restarts the TTL. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Close releases resources.
	Close(ctx context.Context) error
}
