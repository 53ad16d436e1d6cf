// Package ratelimit provides two Limiter styles: a token-bucket variant
// for heavier providers, built on golang.org/x/time/rate, and a
// min-interval variant for lighter ones. Both carry a doubling backoff on
// rejection and a once-per-60s throttled log on rate-limit hits.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	applog "github.com/sawpanic/memescan/internal/log"
	"github.com/rs/zerolog/log"
)

const (
	maxBackoff   = 5 * time.Second
	logWindow    = 60 * time.Second
)

// Limiter is the contract both variants satisfy.
type Limiter interface {
	// Acquire blocks until the caller is permitted to proceed, or ctx is
	// cancelled.
	Acquire(ctx context.Context) error
	// OnRejected reports a 429-equivalent response, extending the backoff
	// and logging (at most once per 60s) a throttled warning.
	OnRejected()
	// OnSuccess decays the backoff toward zero.
	OnSuccess()
}

// TokenBucket permits up to R requests in any sliding 1-second window.
type TokenBucket struct {
	name    string
	limiter *rate.Limiter
	backoff *backoff
	throttle *applog.Throttle
}

// NewTokenBucket creates a token-bucket limiter allowing rps requests per
// second with a burst of one, so acquires are spaced 1/rps apart.
func NewTokenBucket(name string, rps float64) *TokenBucket {
	return &TokenBucket{
		name:     name,
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		backoff:  newBackoff(maxBackoff),
		throttle: applog.NewThrottle(logWindow),
	}
}

func (t *TokenBucket) Acquire(ctx context.Context) error {
	if wait := t.backoff.current_(); wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if cd := t.backoff.cooldownUntil(); cd.After(time.Now()) {
		select {
		case <-time.After(time.Until(cd)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return t.limiter.Wait(ctx)
}

func (t *TokenBucket) OnRejected() {
	wait := t.backoff.onReject()
	if emit, suppressed := t.throttle.Allow(t.name); emit {
		log.Warn().Str("limiter", t.name).Dur("backoff", wait).
			Int64("suppressed_hits", suppressed).Msg("rate limit hit")
	}
}

func (t *TokenBucket) OnSuccess() { t.backoff.onSuccess() }

// MinInterval ensures at least the configured interval elapses between
// successful acquires — the lighter-provider variant.
type MinInterval struct {
	name     string
	interval time.Duration
	lastCh   chan time.Time
	backoff  *backoff
	throttle *applog.Throttle
}

func NewMinInterval(name string, interval time.Duration) *MinInterval {
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return &MinInterval{
		name:     name,
		interval: interval,
		lastCh:   ch,
		backoff:  newBackoff(maxBackoff),
		throttle: applog.NewThrottle(logWindow),
	}
}

func (m *MinInterval) Acquire(ctx context.Context) error {
	var last time.Time
	select {
	case last = <-m.lastCh:
	case <-ctx.Done():
		return ctx.Err()
	}

	now := time.Now()
	wait := m.interval - now.Sub(last)
	if b := m.backoff.current_(); b > wait {
		wait = b
	}
	if cd := m.backoff.cooldownUntil(); cd.After(now) && time.Until(cd) > wait {
		wait = time.Until(cd)
	}

	if wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			m.lastCh <- last
			return ctx.Err()
		}
	}

	m.lastCh <- time.Now()
	return nil
}

func (m *MinInterval) OnRejected() {
	wait := m.backoff.onReject()
	if emit, suppressed := m.throttle.Allow(m.name); emit {
		log.Warn().Str("limiter", m.name).Dur("backoff", wait).
			Int64("suppressed_hits", suppressed).Msg("rate limit hit")
	}
}

func (m *MinInterval) OnSuccess() { m.backoff.onSuccess() }
