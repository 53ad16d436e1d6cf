package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestTokenBucket_SlidingWindow checks that R=5/s, 50 acquires fired as
// fast as possible, takes between 9s and 11s total.
func TestTokenBucket_SlidingWindow(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test, skipped in -short")
	}
	tb := NewTokenBucket("test", 5)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 50; i++ {
		assert.NoError(t, tb.Acquire(ctx))
	}
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 9*time.Second)
	assert.LessOrEqual(t, elapsed, 11*time.Second)
}

func TestTokenBucket_RespectsContextCancellation(t *testing.T) {
	tb := NewTokenBucket("test", 1)
	ctx := context.Background()
	assert.NoError(t, tb.Acquire(ctx))

	cctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := tb.Acquire(cctx)
	assert.Error(t, err)
}

func TestMinInterval_EnforcesSpacing(t *testing.T) {
	mi := NewMinInterval("test", 50*time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	assert.NoError(t, mi.Acquire(ctx))
	assert.NoError(t, mi.Acquire(ctx))
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
}

func TestBackoff_DoublesAndCaps(t *testing.T) {
	b := newBackoff(1 * time.Second)
	d1 := b.onReject()
	assert.Equal(t, 250*time.Millisecond, d1)
	d2 := b.onReject()
	assert.Equal(t, 500*time.Millisecond, d2)
	d3 := b.onReject()
	assert.Equal(t, 1*time.Second, d3)
	d4 := b.onReject()
	assert.Equal(t, 1*time.Second, d4) // capped

	b.onSuccess()
	assert.Equal(t, 500*time.Millisecond, b.current_())
}

func TestOnRejected_ThrottlesLogging(t *testing.T) {
	tb := NewTokenBucket("throttle-test", 100)
	// OnRejected should not panic and should be safe to call repeatedly;
	// the throttle itself is exercised indirectly via log.Throttle tests.
	for i := 0; i < 5; i++ {
		tb.OnRejected()
	}
	tb.OnSuccess()
}
