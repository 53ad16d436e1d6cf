package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/memescan/internal/providererr"
	"github.com/sawpanic/memescan/internal/ratelimit"
)

func newTestFetch(t *testing.T) *Fetch[string] {
	t.Helper()
	return NewFetch[string](Config{
		Name:       "test",
		Limiter:    ratelimit.NewMinInterval("test", 0),
		CacheSize:  16,
		SweepEvery: time.Minute,
		Timeout:    time.Second,
	})
}

func TestFetch_Do_CachesSuccess(t *testing.T) {
	f := newTestFetch(t)
	calls := 0
	producer := func(context.Context) (string, error) {
		calls++
		return "value", nil
	}

	v1, err := f.Do(context.Background(), "key", time.Minute, producer)
	require.NoError(t, err)
	assert.Equal(t, "value", v1)

	v2, err := f.Do(context.Background(), "key", time.Minute, producer)
	require.NoError(t, err)
	assert.Equal(t, "value", v2)
	assert.Equal(t, 1, calls)
}

func TestFetch_Do_TransientErrorPassesThrough(t *testing.T) {
	f := newTestFetch(t)
	boom := errors.New("boom")
	_, err := f.Do(context.Background(), "key", time.Minute, func(context.Context) (string, error) {
		return "", boom
	})
	assert.ErrorIs(t, err, providererr.ErrTransient)
}

// TestFetch_Do_OpenBreakerReturnsErrCircuitOpen trips the breaker with
// consecutive failures, then verifies the next call is rejected before the
// producer runs and surfaces as providererr.ErrCircuitOpen, not
// ErrTransient.
func TestFetch_Do_OpenBreakerReturnsErrCircuitOpen(t *testing.T) {
	f := newTestFetch(t)
	boom := errors.New("boom")
	failing := func(context.Context) (string, error) { return "", boom }

	for i := 0; i < 3; i++ {
		_, err := f.Do(context.Background(), "key", time.Minute, failing)
		assert.ErrorIs(t, err, providererr.ErrTransient)
	}

	calls := 0
	_, err := f.Do(context.Background(), "key", time.Minute, func(context.Context) (string, error) {
		calls++
		return "", nil
	})
	assert.ErrorIs(t, err, providererr.ErrCircuitOpen)
	assert.Equal(t, 0, calls, "producer must not run while the breaker is open")
}

func TestClassify_MapsKnownSentinels(t *testing.T) {
	assert.ErrorIs(t, classify(providererr.ErrRateLimited), providererr.ErrRateLimited)
	assert.ErrorIs(t, classify(providererr.ErrSchema), providererr.ErrSchema)
	assert.ErrorIs(t, classify(errors.New("opaque")), providererr.ErrTransient)
}
