// Package breaker wraps sony/gobreaker so a provider with a severe,
// sustained failure run stops getting hammered instead of retried forever.
package breaker

import (
	"time"

	gobreaker "github.com/sony/gobreaker"
)

// Breaker trips after 3 consecutive failures, or after a 5% failure rate
// over a window of at least 20 requests.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

func New(name string) *Breaker {
	st := gobreaker.Settings{Name: name}
	st.Interval = 60 * time.Second
	st.Timeout = 60 * time.Second
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		if counts.ConsecutiveFailures >= 3 {
			return true
		}
		total := counts.Requests
		if total < 20 {
			return false
		}
		return float64(counts.TotalFailures)/float64(total) > 0.05
	}
	return &Breaker{cb: gobreaker.NewCircuitBreaker(st)}
}

// Execute runs fn through the breaker. When the breaker is open, fn is not
// called and gobreaker.ErrOpenState is returned — the caller (a provider
// client) treats that like any other transient failure and degrades to
// its empty value.
func (b *Breaker) Execute(fn func() (any, error)) (any, error) {
	return b.cb.Execute(fn)
}

func (b *Breaker) State() gobreaker.State { return b.cb.State() }
