package fieldcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-synctemplate/pkg/fields"
	"github.com/goliatone/go-synctemplate/pkg/store"
)

const heroData = `[{"id":"h1","elType":"widget","widgetType":"heading","settings":{"dynamicFields":[{"fieldId":"hero_title","label":"Hero","type":"text","enabled":true},{"fieldId":"hero_sub","type":"textarea","enabled":"yes"}]}}]`

const legacyData = `[{"id":"h1","elType":"widget","widgetType":"heading","settings":{"_est_dynamic_fields_repeater":[{"_id":"a1","key":"hero_title","label":"Legacy","type":"text"}]}}]`

func setupTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	backend := NewRedis(client, "")
	t.Cleanup(func() { backend.Close() })
	return backend, mr
}

type countingBackend struct {
	Backend
	gets, sets int
	failGet    error
}

func (b *countingBackend) Get(ctx context.Context, key string) ([]byte, error) {
	b.gets++
	if b.failGet != nil {
		return nil, b.failGet
	}
	return b.Backend.Get(ctx, key)
}

func (b *countingBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	b.sets++
	return b.Backend.Set(ctx, key, value, ttl)
}

func TestCompute(t *testing.T) {
	items := Compute(store.Template{ID: "hero", Data: []byte(heroData)})
	assert.Equal(t, []fields.Listing{
		{FieldID: "hero_title", Label: "Hero", Type: fields.TypeText},
		{FieldID: "hero_sub", Label: "hero_sub", Type: fields.TypeTextarea},
	}, items)

	empty := Compute(store.Template{ID: "x", Data: []byte("not json")})
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestCompute_MigratesLegacyDeclarations(t *testing.T) {
	items := Compute(store.Template{ID: "legacy", Data: []byte(legacyData)})
	assert.Equal(t, []fields.Listing{{FieldID: "a1", Label: "Legacy", Type: fields.TypeText}}, items)
}

func TestKey_ChangesWithPayload(t *testing.T) {
	a := Key(store.Template{ID: "hero", Data: []byte(heroData)})
	b := Key(store.Template{ID: "hero", Data: []byte(legacyData)})
	c := Key(store.Template{ID: "hero", Content: []byte(heroData)})

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, c, "content fallback hashes the effective payload")
	assert.Contains(t, a, "fields:hero:")
}

func TestCache_MemoisesListings(t *testing.T) {
	ctx := context.Background()
	backend := &countingBackend{Backend: NewMemory()}
	cache := New(backend)
	tpl := store.Template{ID: "hero", Data: []byte(heroData)}

	first := cache.Listings(ctx, tpl)
	second := cache.Listings(ctx, tpl)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, backend.gets)
	assert.Equal(t, 1, backend.sets)
}

func TestCache_BackendFailureFallsBack(t *testing.T) {
	backend := &countingBackend{Backend: NewMemory(), failGet: errors.New("boom")}
	cache := New(backend)

	items := cache.Listings(context.Background(), store.Template{ID: "hero", Data: []byte(heroData)})
	assert.Len(t, items, 2)
}

func TestCache_NilComputes(t *testing.T) {
	var cache *Cache
	items := cache.Listings(context.Background(), store.Template{ID: "hero", Data: []byte(heroData)})
	assert.Len(t, items, 2)
	assert.NoError(t, cache.Invalidate(context.Background(), store.Template{}))
}

func TestCache_Redis(t *testing.T) {
	ctx := context.Background()
	backend, mr := setupTestRedis(t)
	cache := New(backend, WithTTL(time.Minute))
	tpl := store.Template{ID: "hero", Data: []byte(heroData)}

	items := cache.Listings(ctx, tpl)
	require.Len(t, items, 2)

	key := DefaultRedisPrefix + Key(tpl)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))

	cached, err := backend.Get(ctx, Key(tpl))
	require.NoError(t, err)
	decoded, err := decodeListings(cached)
	require.NoError(t, err)
	assert.Equal(t, items, decoded)

	require.NoError(t, cache.Invalidate(ctx, tpl))
	assert.False(t, mr.Exists(key))
}

func TestRedis_Miss(t *testing.T) {
	backend, _ := setupTestRedis(t)
	_, err := backend.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedis_ServerDownFallsBack(t *testing.T) {
	backend, mr := setupTestRedis(t)
	mr.Close()

	cache := New(backend)
	items := cache.Listings(context.Background(), store.Template{ID: "hero", Data: []byte(heroData)})
	assert.Len(t, items, 2)
}

func TestDialRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	config := DefaultRedisConfig()
	config.Addr = mr.Addr()
	backend, err := DialRedis(context.Background(), config)
	require.NoError(t, err)
	defer backend.Close()

	_, err = DialRedis(context.Background(), RedisConfig{Addr: "localhost:99999"})
	assert.Error(t, err)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Second))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	now = now.Add(2 * time.Second)
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
	assert.Equal(t, 0, m.Len())

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, m.Set(cancelled, "k", nil, 0), context.Canceled)
}
