// Package fieldcache caches the dynamic field listings of templates.
//
// Listings are keyed by template id and a BLAKE3 digest of the stored layout
// payload, so editing a template yields a new key and stale entries simply
// age out. Values are CBOR encoded and kept in a pluggable Backend (in-process
// or Redis).
package fieldcache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by backends when a key holds no live value.
var ErrMiss = errors.New("fieldcache: miss")

// Backend stores opaque cache values.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
