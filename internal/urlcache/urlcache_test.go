package urlcache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutFetchesOnceThenReuses(t *testing.T) {
	var fetches int32
	c := New(time.Hour, func(ctx context.Context, key string) (Entry, error) {
		atomic.AddInt32(&fetches, 1)
		return Entry{UploadURL: "https://example.com/" + key, Token: "tok"}, nil
	})

	e1, err := c.Checkout(context.Background(), "bucket1")
	require.NoError(t, err)
	c.Return("bucket1", e1, true)

	e2, err := c.Checkout(context.Background(), "bucket1")
	require.NoError(t, err)
	assert.Equal(t, e1, e2)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches))
}

func TestCheckoutIsExclusiveUntilReturned(t *testing.T) {
	var fetches int32
	c := New(time.Hour, func(ctx context.Context, key string) (Entry, error) {
		n := atomic.AddInt32(&fetches, 1)
		return Entry{UploadURL: "url", Token: "tok-" + string(rune('a'+n-1))}, nil
	})

	e1, err := c.Checkout(context.Background(), "file1")
	require.NoError(t, err)

	// Still checked out: a second Checkout must fetch a distinct entry.
	e2, err := c.Checkout(context.Background(), "file1")
	require.NoError(t, err)
	assert.NotEqual(t, e1.Token, e2.Token)
	assert.Equal(t, int32(2), atomic.LoadInt32(&fetches))
}

func TestReturnFalseEvicts(t *testing.T) {
	var fetches int32
	c := New(time.Hour, func(ctx context.Context, key string) (Entry, error) {
		atomic.AddInt32(&fetches, 1)
		return Entry{UploadURL: "url", Token: "tok"}, nil
	})

	e, err := c.Checkout(context.Background(), "k")
	require.NoError(t, err)
	c.Return("k", e, false)

	_, err = c.Checkout(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&fetches), "eviction should force a fresh fetch")
}

func TestExpiredEntryIsRefetched(t *testing.T) {
	var fetches int32
	c := New(20*time.Millisecond, func(ctx context.Context, key string) (Entry, error) {
		atomic.AddInt32(&fetches, 1)
		return Entry{UploadURL: "url", Token: "tok", ExpiresAt: time.Now().Add(20 * time.Millisecond)}, nil
	})

	e, err := c.Checkout(context.Background(), "k")
	require.NoError(t, err)
	c.Return("k", e, true)

	time.Sleep(40 * time.Millisecond)

	_, err = c.Checkout(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&fetches))
}

func TestEvictAll(t *testing.T) {
	var fetches int32
	c := New(time.Hour, func(ctx context.Context, key string) (Entry, error) {
		atomic.AddInt32(&fetches, 1)
		return Entry{UploadURL: "url", Token: "tok"}, nil
	})

	e, err := c.Checkout(context.Background(), "k")
	require.NoError(t, err)
	c.Return("k", e, true)

	c.EvictAll()

	_, err = c.Checkout(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&fetches))
}
