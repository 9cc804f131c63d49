package report

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestFetchBytesPopulatesOnce(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	key := Key("gallery", 7, time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC))

	calls := 0
	loader := func(context.Context) ([]byte, error) {
		calls++
		return []byte("<html>payload</html>"), nil
	}

	first, err := cache.FetchBytes(ctx, key, loader)
	require.NoError(t, err)
	second, err := cache.FetchBytes(ctx, key, loader)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, calls, "second fetch must hit the cache")
}

func TestFetchBytesPropagatesLoaderError(t *testing.T) {
	cache, _ := newTestCache(t)
	boom := errors.New("generation failed")
	_, err := cache.FetchBytes(context.Background(), "report:x", func(context.Context) ([]byte, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
}

func TestNilCacheCallsLoader(t *testing.T) {
	var cache *Cache
	payload, err := cache.FetchBytes(context.Background(), "k", func(context.Context) ([]byte, error) {
		return []byte("direct"), nil
	})
	require.NoError(t, err)
	require.Equal(t, []byte("direct"), payload)
}

func TestInvalidateDropsSeedKeys(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	asOf := time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC)

	loader := func(context.Context) ([]byte, error) { return []byte("x"), nil }
	_, err := cache.FetchBytes(ctx, Key("gallery", 7, asOf), loader)
	require.NoError(t, err)
	_, err = cache.FetchBytes(ctx, Key("bundle", 7, asOf), loader)
	require.NoError(t, err)
	_, err = cache.FetchBytes(ctx, Key("gallery", 8, asOf), loader)
	require.NoError(t, err)

	require.NoError(t, cache.Invalidate(ctx, 7))
	require.False(t, mr.Exists(Key("gallery", 7, asOf)))
	require.False(t, mr.Exists(Key("bundle", 7, asOf)))
	require.True(t, mr.Exists(Key("gallery", 8, asOf)))
}
