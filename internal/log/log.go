// Package log wires the process-wide zerolog logger and a small helper for
// throttling noisy, high-frequency log sites (rate-limit hits, cache
// sweeps) to at most one line per window.
package log

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger. Pretty-prints to stderr when
// attached to a terminal-like environment (pretty=true), otherwise emits
// structured JSON for log aggregation.
func Init(level string, pretty bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

// Throttle emits at most one log call per window for a given key,
// counting the calls it suppresses in between (used by the rate limiter
// to log "N hits suppressed" instead of one line per rejection).
type Throttle struct {
	mu     sync.Mutex
	window time.Duration
	last   map[string]time.Time
	hits   map[string]int64
}

func NewThrottle(window time.Duration) *Throttle {
	return &Throttle{window: window, last: make(map[string]time.Time), hits: make(map[string]int64)}
}

// Allow reports whether the caller should actually emit a log line for
// key. On an emitting call it also returns the number of hits suppressed
// since the previous emission; a suppressed call returns 0.
func (t *Throttle) Allow(key string) (emit bool, suppressed int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	t.hits[key]++

	last, seen := t.last[key]
	if seen && now.Sub(last) < t.window {
		return false, 0
	}

	suppressed = t.hits[key] - 1
	t.last[key] = now
	t.hits[key] = 0
	return true, suppressed
}
