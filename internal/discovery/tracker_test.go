package discovery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sawpanic/memescan/internal/model"
)

func TestTracker_ObserveThenSeen(t *testing.T) {
	tr := New()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr.Observe("addr-1", 42, now)
	assert.True(t, tr.Seen("addr-1"))
	assert.False(t, tr.Seen("addr-2"))
}

func TestTracker_ObserveDoesNotResetFirstSeenAt(t *testing.T) {
	tr := New()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr.Observe("addr-1", 10, t0)
	tr.Observe("addr-1", 20, t0.Add(time.Hour))

	// 23 hours after the original sighting it should still be tracked
	// (not 23h after the second Observe call).
	removed := tr.Sweep(t0.Add(23 * time.Hour))
	assert.Equal(t, 0, removed)
	assert.True(t, tr.Seen("addr-1"))
}

func TestTracker_Sweep_RemovesExpiredEntries(t *testing.T) {
	tr := New()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr.Observe("addr-1", 10, t0)

	removed := tr.Sweep(t0.Add(25 * time.Hour))
	assert.Equal(t, 1, removed)
	assert.False(t, tr.Seen("addr-1"))
	assert.Equal(t, 0, tr.Len())
}

func TestTracker_Sweep_KeepsUnexpiredEntries(t *testing.T) {
	tr := New()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr.Observe("addr-1", 10, t0)
	tr.Observe("addr-2", 10, t0.Add(23*time.Hour))

	removed := tr.Sweep(t0.Add(25 * time.Hour))
	assert.Equal(t, 1, removed)
	assert.True(t, tr.Seen("addr-2"))
}
