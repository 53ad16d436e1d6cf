// Package store defines the signal/outcome persistence boundary and a
// process-local in-memory implementation; internal/store/postgres wires
// the same interface to an optional database.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/sawpanic/memescan/internal/model"
	"github.com/sawpanic/memescan/internal/threshold"
)

// Outcome records what happened after a signal was emitted, used by the
// threshold optimizer to tune gates.
type Outcome struct {
	SignalID    string
	TokenAddr   model.TokenAddress
	EmittedAt   time.Time
	EvaluatedAt time.Time
	WasWin      bool
	ReturnPct   float64
}

// SignalStore is the persistence boundary the pipeline depends on: has
// this address already got an open position, record a new signal and
// its eventual outcome, and read back recent history for the optimizer.
type SignalStore interface {
	HasOpenPosition(ctx context.Context, addr model.TokenAddress) (bool, error)
	RecordSignal(ctx context.Context, sig *model.Signal) error
	RecordOutcome(ctx context.Context, o Outcome) error
	RecentSignalsWithOutcomes(ctx context.Context, limit int) ([]Outcome, error)
	LoadThresholds(ctx context.Context) (model.Thresholds, bool, error)
	PersistThresholds(ctx context.Context, t model.Thresholds) error
}

// InMemory is a process-local SignalStore — the default when no
// database is configured. State does not survive a restart.
type InMemory struct {
	mu         sync.RWMutex
	open       map[model.TokenAddress]struct{}
	signals    map[string]*model.Signal
	outcomes   []Outcome
	thresholds *model.Thresholds
}

func NewInMemory() *InMemory {
	return &InMemory{
		open:    make(map[model.TokenAddress]struct{}),
		signals: make(map[string]*model.Signal),
	}
}

func (s *InMemory) HasOpenPosition(ctx context.Context, addr model.TokenAddress) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.open[addr]
	return ok, nil
}

func (s *InMemory) RecordSignal(ctx context.Context, sig *model.Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signals[sig.ID] = sig
	if sig.TokenMetrics != nil {
		s.open[sig.TokenMetrics.Address] = struct{}{}
	}
	return nil
}

func (s *InMemory) RecordOutcome(ctx context.Context, o Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, o)
	delete(s.open, o.TokenAddr)
	return nil
}

func (s *InMemory) RecentSignalsWithOutcomes(ctx context.Context, limit int) ([]Outcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.outcomes) {
		limit = len(s.outcomes)
	}
	start := len(s.outcomes) - limit
	out := make([]Outcome, limit)
	copy(out, s.outcomes[start:])
	return out, nil
}

func (s *InMemory) LoadThresholds(ctx context.Context) (model.Thresholds, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.thresholds == nil {
		return model.Thresholds{}, false, nil
	}
	return *s.thresholds, true, nil
}

func (s *InMemory) PersistThresholds(ctx context.Context, t model.Thresholds) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := t.Clone()
	s.thresholds = &cp
	return nil
}

// ToOptimizerOutcomes adapts store.Outcome history into the small
// shape internal/threshold.Store.Optimize understands.
func ToOptimizerOutcomes(outcomes []Outcome) []threshold.Outcome {
	out := make([]threshold.Outcome, len(outcomes))
	for i, o := range outcomes {
		out[i] = threshold.Outcome{WasWin: o.WasWin}
	}
	return out
}
