package fieldcache

import (
	"context"
	"encoding/hex"
	"errors"
	"time"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/goliatone/go-synctemplate/pkg/fields"
	"github.com/goliatone/go-synctemplate/pkg/store"
)

// DefaultTTL bounds how long a listing is kept.
const DefaultTTL = 10 * time.Minute

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides DefaultTTL. Zero keeps entries until evicted.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl >= 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger logs backend failures.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Cache memoises template field listings. Backend failures are logged and
// the listing is computed directly, so a cache outage never fails a caller.
// A nil *Cache computes every listing.
type Cache struct {
	backend Backend
	ttl     time.Duration
	logger  *zap.Logger
}

// New wraps backend. A nil backend selects an in-process one.
func New(backend Backend, options ...Option) *Cache {
	if backend == nil {
		backend = NewMemory()
	}
	c := &Cache{
		backend: backend,
		ttl:     DefaultTTL,
		logger:  zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Key derives the cache key of a template's listing.
func Key(tpl store.Template) string {
	sum := blake3.Sum256(tpl.Payload())
	return "fields:" + tpl.ID + ":" + hex.EncodeToString(sum[:16])
}

// Compute decodes the template, migrates legacy declarations and lists the
// discovered fields. The result is never nil.
func Compute(tpl store.Template) []fields.Listing {
	tree := tpl.Tree()
	fields.MigrateLegacy(tree)
	return fields.Listings(fields.Discover(tree))
}

// Listings returns the template's field listing, from the backend when
// possible.
func (c *Cache) Listings(ctx context.Context, tpl store.Template) []fields.Listing {
	if c == nil {
		return Compute(tpl)
	}

	key := Key(tpl)
	if data, err := c.backend.Get(ctx, key); err == nil {
		items, decodeErr := decodeListings(data)
		if decodeErr == nil {
			return items
		}
		c.logger.Warn("discarding undecodable listing", zap.String("key", key), zap.Error(decodeErr))
	} else if !errors.Is(err, ErrMiss) {
		c.logger.Warn("field cache read failed", zap.String("key", key), zap.Error(err))
	}

	items := Compute(tpl)
	data, err := encodeListings(items)
	if err != nil {
		c.logger.Warn("field cache encode failed", zap.String("key", key), zap.Error(err))
		return items
	}
	if err := c.backend.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("field cache write failed", zap.String("key", key), zap.Error(err))
	}
	return items
}

// Invalidate drops the cached listing of tpl.
func (c *Cache) Invalidate(ctx context.Context, tpl store.Template) error {
	if c == nil {
		return nil
	}
	return c.backend.Delete(ctx, Key(tpl))
}
