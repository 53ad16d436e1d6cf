// Package guard composes a RateLimiter, a TTLCache, an InflightRegistry,
// and a circuit Breaker around a single upstream call, generic over the
// response type so each provider client gets one without duplicating the
// composition.
package guard

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker"

	"github.com/sawpanic/memescan/internal/breaker"
	"github.com/sawpanic/memescan/internal/cache"
	"github.com/sawpanic/memescan/internal/inflight"
	"github.com/sawpanic/memescan/internal/providererr"
	"github.com/sawpanic/memescan/internal/ratelimit"
)

// Fetch[V] is cached, rate-limited, deduplicated, and breaker-protected.
type Fetch[V any] struct {
	name    string
	limiter ratelimit.Limiter
	cache   *cache.TTLCache[V]
	inflt   *inflight.Registry[string, V]
	cb      *breaker.Breaker
	timeout time.Duration
}

type Config struct {
	Name       string
	Limiter    ratelimit.Limiter
	CacheSize  int
	SweepEvery time.Duration
	Timeout    time.Duration
}

func NewFetch[V any](cfg Config) *Fetch[V] {
	return &Fetch[V]{
		name:    cfg.Name,
		limiter: cfg.Limiter,
		cache:   cache.New[V](cfg.CacheSize, cfg.SweepEvery),
		inflt:   inflight.NewRegistry[string, V](),
		cb:      breaker.New(cfg.Name),
		timeout: cfg.Timeout,
	}
}

// Do fetches key via producer, observing (in order): cache, inflight
// coalescing, rate limiting, circuit breaking, and a per-request timeout.
// On any failure it returns the zero value and a wrapped providererr
// sentinel — it never panics or propagates past this boundary. The
// result is cached for a fixed ttl; use DoTTL when the producer needs to
// pick the ttl itself (e.g. a shorter one for an empty result).
func (f *Fetch[V]) Do(ctx context.Context, key string, ttl time.Duration, producer func(context.Context) (V, error)) (V, error) {
	return f.DoTTL(ctx, key, func(cctx context.Context) (V, time.Duration, error) {
		v, err := producer(cctx)
		return v, ttl, err
	})
}

// DoTTL is Do with a producer that returns its own cache ttl alongside
// the value, so a call site can shorten retention for a degenerate
// result (e.g. an empty list) without a second round trip.
func (f *Fetch[V]) DoTTL(ctx context.Context, key string, producer func(context.Context) (V, time.Duration, error)) (V, error) {
	if v, ok := f.cache.Get(key); ok {
		return v, nil
	}

	return f.inflt.GetOrStart(key, func() (V, error) {
		// Re-check the cache: another goroutine may have populated it
		// between our miss above and acquiring the inflight slot.
		if v, ok := f.cache.Get(key); ok {
			return v, nil
		}

		cctx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()

		if err := f.limiter.Acquire(cctx); err != nil {
			var zero V
			return zero, providererr.ErrTransient
		}

		type produced struct {
			v   V
			ttl time.Duration
		}
		result, err := f.cb.Execute(func() (any, error) {
			v, ttl, err := producer(cctx)
			return produced{v, ttl}, err
		})
		if err != nil {
			if errors.Is(err, providererr.ErrRateLimited) {
				f.limiter.OnRejected()
			}
			var zero V
			log.Debug().Str("provider", f.name).Str("key", key).Err(err).Msg("provider call failed")
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return zero, providererr.ErrTransient
			}
			return zero, classify(err)
		}
		f.limiter.OnSuccess()

		p := result.(produced)
		f.cache.Put(key, p.v, p.ttl)
		return p.v, nil
	})
}

// classify maps an opaque producer error onto one of the providererr
// sentinels. Producers that already return a sentinel are passed through
// unchanged. gobreaker.ErrOpenState comes from the breaker itself, not the
// producer, so it's checked separately rather than folded into the loop.
func classify(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) {
		return providererr.ErrCircuitOpen
	}
	for _, sentinel := range []error{providererr.ErrRateLimited, providererr.ErrSchema, providererr.ErrDisabled, providererr.ErrTransient, providererr.ErrCircuitOpen} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return providererr.ErrTransient
}

func (f *Fetch[V]) CacheStats() cache.Stats { return f.cache.Stats() }
