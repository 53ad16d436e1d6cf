// Package threshold holds the process-wide dynamic gating configuration
// behind a copy-on-write atomic pointer, so a concurrent scan cycle never
// observes a threshold set that's half-updated.
package threshold

import (
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/memescan/internal/model"
)

// Outcome is the minimal signal-outcome shape the optimizer needs; the
// store package supplies the concrete persistence-backed type.
type Outcome struct {
	WasWin bool
}

// Store holds the live Thresholds behind an atomic.Pointer so readers
// never block on a writer and never see a torn value.
type Store struct {
	ptr atomic.Pointer[model.Thresholds]
}

func New(initial model.Thresholds) *Store {
	s := &Store{}
	s.ptr.Store(&initial)
	return s
}

func NewDefault() *Store {
	return New(model.DefaultThresholds())
}

// Current returns a value copy of the live thresholds; safe to call from
// any goroutine without additional locking.
func (s *Store) Current() model.Thresholds {
	return *s.ptr.Load()
}

// Apply atomically replaces the live thresholds with next.
func (s *Store) Apply(next model.Thresholds) {
	cp := next.Clone()
	s.ptr.Store(&cp)
}

// Optimize nudges thresholds based on recent outcome win rate: a low win
// rate over enough samples tightens the gates (raises floors, lowers the
// bundle-risk ceiling); a high win rate loosens them one notch at a time
// so the system keeps exploring. Fewer than minSampleSize outcomes is a
// no-op — there isn't enough signal to act on yet. Reports whether it
// actually changed the live thresholds, so a caller knows when there's
// something new worth persisting.
//
// This is a global win-rate tighten/loosen, not the per-factor
// correlation analysis a fuller optimizer would run (correlating each
// score component against win/loss independently); see DESIGN.md for
// why the simpler version ships first.
func (s *Store) Optimize(outcomes []Outcome) bool {
	const minSampleSize = 20
	if len(outcomes) < minSampleSize {
		return false
	}

	wins := 0
	for _, o := range outcomes {
		if o.WasWin {
			wins++
		}
	}
	winRate := float64(wins) / float64(len(outcomes))

	cur := s.Current()
	switch {
	case winRate < 0.35:
		cur.MinOnChainScore = clamp(cur.MinOnChainScore+5, 20, 80)
		cur.MinSafetyScore = clamp(cur.MinSafetyScore+5, 20, 80)
		cur.MaxBundleRiskScore = clamp(cur.MaxBundleRiskScore-5, 20, 80)
		log.Info().Float64("win_rate", winRate).Msg("threshold optimizer tightening gates")
	case winRate > 0.65:
		cur.MinOnChainScore = clamp(cur.MinOnChainScore-2, 20, 80)
		cur.MinSafetyScore = clamp(cur.MinSafetyScore-2, 20, 80)
		cur.MaxBundleRiskScore = clamp(cur.MaxBundleRiskScore+2, 20, 80)
		log.Info().Float64("win_rate", winRate).Msg("threshold optimizer loosening gates")
	default:
		return false
	}
	s.Apply(cur)
	return true
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
