package redis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/fekuna/omnipos-storefront/internal/kv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, quota int64) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(&Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, "test", quota), mr
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, 0)

	_, ok, err := s.Get(ctx, kv.KeyProducts)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, kv.KeyProducts, `[{"id":"1"}]`))
	v, ok, err := s.Get(ctx, kv.KeyProducts)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"1"}]`, v)
	assert.Equal(t, `[{"id":"1"}]`, mr.HGet("test:kv", kv.KeyProducts))

	require.NoError(t, s.Remove(ctx, kv.KeyProducts))
	_, ok, _ = s.Get(ctx, kv.KeyProducts)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, kv.KeyCart, "[]"))
	require.NoError(t, s.ClearAll(ctx))
	assert.False(t, mr.Exists("test:kv"))
}

func TestStore_Quota(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, 30)

	require.NoError(t, s.Set(ctx, "orders", strings.Repeat("x", 20)))
	err := s.Set(ctx, "products", strings.Repeat("y", 20))
	assert.True(t, kv.IsQuotaExceeded(err))

	// replacing an existing key only counts the new value
	require.NoError(t, s.Set(ctx, "orders", strings.Repeat("z", 24)))
}

func TestMapError(t *testing.T) {
	assert.Nil(t, mapError(nil))
	assert.True(t, kv.IsQuotaExceeded(mapError(errors.New("OOM command not allowed when used memory > 'maxmemory'"))))
	assert.False(t, kv.IsQuotaExceeded(mapError(goredis.Nil)))
}
