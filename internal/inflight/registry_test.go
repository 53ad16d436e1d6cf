package inflight

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestRegistry_CoalescesConcurrentCalls checks that 10 concurrent
// GetOrStart calls for the same key result in exactly one producer
// invocation and 10 identical results.
func TestRegistry_CoalescesConcurrentCalls(t *testing.T) {
	r := NewRegistry[string, int]()
	var producerCalls int64

	producer := func() (int, error) {
		atomic.AddInt64(&producerCalls, 1)
		time.Sleep(30 * time.Millisecond)
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			v, err := r.GetOrStart("token-x", producer)
			assert.NoError(t, err)
			results[idx] = v
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, producerCalls)
	for _, v := range results {
		assert.Equal(t, 42, v)
	}
}

func TestRegistry_RemovesEntryAfterCompletion(t *testing.T) {
	r := NewRegistry[string, int]()
	_, _ = r.GetOrStart("k", func() (int, error) { return 1, nil })

	var calls int64
	_, _ = r.GetOrStart("k", func() (int, error) {
		atomic.AddInt64(&calls, 1)
		return 2, nil
	})
	assert.EqualValues(t, 1, calls, "a fresh call for the same key after completion must re-invoke the producer")
}

func TestRegistry_PropagatesError(t *testing.T) {
	r := NewRegistry[string, int]()
	sentinel := assert.AnError

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, err := r.GetOrStart("k", func() (int, error) {
				time.Sleep(10 * time.Millisecond)
				return 0, sentinel
			})
			errs[idx] = err
		}(i)
	}
	wg.Wait()

	for _, e := range errs {
		assert.Equal(t, sentinel, e)
	}
}
