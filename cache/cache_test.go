package cache

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGetDelete(t *testing.T) {
	c := NewMemoryCache(time.Minute, 0)
	defer c.Close()
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	// returned slice is a copy
	got[0] = 'x'
	again, _ := c.Get(ctx, "k")
	assert.Equal(t, []byte("v"), again)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, 0)
	defer c.Close()
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "short", []byte("1"), time.Second))
	require.NoError(t, c.Set(ctx, "long", []byte("2"), time.Hour))

	now = now.Add(2 * time.Second)
	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, "long")
	assert.NoError(t, err)

	c.removeExpired()
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCache_ClearAndClose(t *testing.T) {
	c := NewMemoryCache(time.Minute, 10*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, c.Clear(ctx))
	assert.Equal(t, 0, c.Len())

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Set(ctx, "a", nil, 0), ErrCacheClosed)
	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheClosed)
}

func TestMemoryCache_Concurrent(t *testing.T) {
	c := NewMemoryCache(time.Minute, 0)
	defer c.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Set(ctx, "k", []byte("v"), 0)
			_, _ = c.Get(ctx, "k")
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, c.Len())
}

type feed struct {
	Titles []string `json:"titles"`
}

func TestTyped_GetOrLoad(t *testing.T) {
	c := NewMemoryCache(time.Minute, 0)
	defer c.Close()
	typed := NewTyped[feed](c, time.Minute)
	ctx := context.Background()

	loads := 0
	load := func(context.Context) (*feed, error) {
		loads++
		return &feed{Titles: []string{"a", "b"}}, nil
	}

	first, err := typed.GetOrLoad(ctx, "feed", load)
	require.NoError(t, err)
	second, err := typed.GetOrLoad(ctx, "feed", load)
	require.NoError(t, err)

	assert.Equal(t, 1, loads)
	assert.Equal(t, first, second)

	require.NoError(t, typed.Delete(ctx, "feed"))
	_, err = typed.GetOrLoad(ctx, "feed", load)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
}

func TestTyped_LoadErrorIsNotCached(t *testing.T) {
	c := NewMemoryCache(time.Minute, 0)
	defer c.Close()
	typed := NewTyped[feed](c, time.Minute)

	boom := errors.New("boom")
	_, err := typed.GetOrLoad(context.Background(), "feed", func(context.Context) (*feed, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())
}

func TestRedisCache_Basic(t *testing.T) {
	url := os.Getenv("NEWSROOM_TEST_REDIS_URL")
	if url == "" {
		t.Skip("Skipping Redis tests: NEWSROOM_TEST_REDIS_URL not set")
	}
	ctx := context.Background()

	c, err := NewRedisCache(ctx, url, "newsroom-test:", time.Minute)
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Clear(ctx))

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, c.Clear(ctx))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestNew_FallsBackToMemory(t *testing.T) {
	c := New(context.Background(), "", "p:", time.Minute)
	defer c.Close()
	_, ok := c.(*MemoryCache)
	assert.True(t, ok)
}
