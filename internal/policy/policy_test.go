package policy

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusb2/b2core/base"
)

func TestDefaultBackoffBounds(t *testing.T) {
	for attempt := 1; attempt <= 5; attempt++ {
		d := DefaultBackoff(attempt)
		lo := (time.Duration(1) << uint(attempt) * time.Second) + 10*time.Millisecond
		hi := (time.Duration(1) << uint(attempt) * time.Second) + 1000*time.Millisecond
		assert.GreaterOrEqual(t, d, lo)
		assert.Less(t, d, hi)
	}
}

func TestAuthRetriesAndReconnectsOnce(t *testing.T) {
	var reconnects int32
	a := NewAuth(3, func(ctx context.Context) error {
		atomic.AddInt32(&reconnects, 1)
		return nil
	})
	a.Backoff = func(int) time.Duration { return 0 }

	var attempts int32
	err := a.Do(context.Background(), func(ctx context.Context, attempt int) error {
		n := atomic.AddInt32(&attempts, 1)
		if n < 2 {
			return &base.Error{Kind: base.Authentication}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), attempts)
	assert.Equal(t, int32(1), reconnects)
}

func TestAuthGivesUpAfterRetryCount(t *testing.T) {
	a := NewAuth(2, func(ctx context.Context) error { return nil })
	a.Backoff = func(int) time.Duration { return 0 }

	err := a.Do(context.Background(), func(ctx context.Context, attempt int) error {
		return &base.Error{Kind: base.Authentication}
	})
	assert.Error(t, err)
}

func TestAuthPassesThroughNonAuthErrors(t *testing.T) {
	a := NewAuth(3, func(ctx context.Context) error { return nil })
	want := &base.Error{Kind: base.NotFound}
	err := a.Do(context.Background(), func(ctx context.Context, attempt int) error {
		return want
	})
	assert.Same(t, want, err)
}

func TestHashRewindsAndRetries(t *testing.T) {
	h := NewHash(3)
	h.Backoff = func(int) time.Duration { return 0 }

	var rewinds, attempts int
	err := h.Do(context.Background(), func() error {
		rewinds++
		return nil
	}, func(ctx context.Context, attempt int) error {
		attempts++
		if attempts < 2 {
			return &base.Error{Kind: base.InvalidHash}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 1, rewinds)
}

func TestHashFailsFastWithoutRewind(t *testing.T) {
	h := NewHash(3)
	err := h.Do(context.Background(), nil, func(ctx context.Context, attempt int) error {
		return &base.Error{Kind: base.InvalidHash}
	})
	var be *base.Error
	require.True(t, errors.As(err, &be))
	assert.Equal(t, base.BadRequest, be.Kind)
}

func TestBulkheadLimitsConcurrency(t *testing.T) {
	b := NewBulkhead(2)
	assert.Equal(t, 2, b.Limit())

	var current, max int32
	release := make(chan struct{})
	done := make(chan struct{})

	for i := 0; i < 4; i++ {
		go func() {
			b.Do(context.Background(), func(ctx context.Context) error {
				n := atomic.AddInt32(&current, 1)
				for {
					old := atomic.LoadInt32(&max)
					if n <= old || atomic.CompareAndSwapInt32(&max, old, n) {
						break
					}
				}
				<-release
				atomic.AddInt32(&current, -1)
				return nil
			})
			done <- struct{}{}
		}()
	}

	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, atomic.LoadInt32(&max), int32(2))
	close(release)
	for i := 0; i < 4; i++ {
		<-done
	}
}
