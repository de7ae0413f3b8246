package kvstore

import (
	"context"
	"time"
)

// Store is a typed key/value view over a shared, process-external store.
// Values are serialized opaquely; absent or expired keys are reported via
// the found flag, never as an error.
type Store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string, dest any) (bool, error)
	// GetDel reads and removes a key as a single store operation, so a
	// value can be consumed at most once even under concurrent readers.
	GetDel(ctx context.Context, key string, dest any) (bool, error)
	Delete(ctx context.Context, key string) (bool, error)
}
