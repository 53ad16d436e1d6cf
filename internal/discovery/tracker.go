// Package discovery tracks tokens that were observed but hadn't (yet)
// cleared the full signal bar, so a later scan cycle can notice renewed
// momentum without re-announcing a discovery the user already saw.
package discovery

import (
	"sync"
	"time"

	"github.com/sawpanic/memescan/internal/model"
)

const defaultTTL = 24 * time.Hour

// Tracker is a bounded, self-expiring observed-token set. It's safe for
// concurrent use from a single scan cycle's worker goroutines.
type Tracker struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[model.TokenAddress]model.DiscoveryEntry
}

func New() *Tracker {
	return &Tracker{ttl: defaultTTL, entries: make(map[model.TokenAddress]model.DiscoveryEntry)}
}

// Observe records addr as seen at now with score, unless it's already
// tracked — the FirstSeenAt timestamp never moves once set, so the
// 24-hour window always measures from the original sighting.
func (t *Tracker) Observe(addr model.TokenAddress, score float64, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e, ok := t.entries[addr]; ok {
		e.LastScore = score
		t.entries[addr] = e
		return
	}
	t.entries[addr] = model.DiscoveryEntry{Address: addr, FirstSeenAt: now, LastScore: score}
}

// Seen reports whether addr is currently tracked (i.e. was observed and
// hasn't expired yet).
func (t *Tracker) Seen(addr model.TokenAddress) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[addr]
	return ok
}

// Sweep drops every entry older than the 24-hour window as of now,
// returning the number of entries removed. Call this once per scan
// cycle rather than on every lookup — the map only grows between sweeps.
func (t *Tracker) Sweep(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for addr, e := range t.entries {
		if e.Expired(now, t.ttl) {
			delete(t.entries, addr)
			removed++
		}
	}
	return removed
}

// Len reports the current tracked-entry count.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
