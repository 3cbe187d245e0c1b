package store

import (
	"context"
)

// Keys under which each concern persists its state.
const (
	KeyLogs          = "logs"
	KeyGoals         = "goals"
	KeyStreaks       = "streaks"
	KeyCustomMetrics = "custom-metrics"
)

// AllKeys lists every key the application writes, in export order.
var AllKeys = []string{KeyLogs, KeyGoals, KeyStreaks, KeyCustomMetrics}

// Store is the key-value blob store that backs all application state.
// Values are opaque JSON documents; the store never interprets them.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put creates or replaces the value for key.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys returns all stored keys in ascending order.
	Keys(ctx context.Context) ([]string, error)
	Close() error
}
