// Package metadata stores small opaque values by key in the client's local
// SQLite database. It backs the persisted identity session and, by default,
// the per-user favorites sets.
package metadata

import "context"

// Repository is a key/value store. Get returns (nil, nil) for a missing key
// and Delete of a missing key is not an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
