// Package metadata stores small named blobs in the local state database.
package metadata

import (
	"context"
)

// Repository is a key/value view over the metadata table.
type Repository interface {
	// Get returns the value stored under key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Set inserts or overwrites key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes the given keys. Absent keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}
