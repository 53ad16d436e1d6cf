// Package scheduler drives the periodic, non-overlapping scan cycle: on
// each tick it runs the pipeline's evaluation pass over the observed
// universe. Cycles run one at a time; ticks that fall due while a cycle
// is still running are dropped and counted rather than piling up
// concurrent passes.
package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// CycleFunc runs one full scan-and-evaluate pass. It should respect
// ctx cancellation for any blocking call it makes.
type CycleFunc func(ctx context.Context) error

// Scheduler runs CycleFunc on a fixed interval, never overlapping two
// runs, until its context is canceled.
type Scheduler struct {
	interval time.Duration
	cycle    CycleFunc

	running   atomic.Bool
	startedAt time.Time
	lastRun   atomic.Value // time.Time
	lastErr   atomic.Pointer[error]
	cycles    atomic.Int64
	skipped   atomic.Int64
}

func New(interval time.Duration, cycle CycleFunc) *Scheduler {
	return &Scheduler{interval: interval, cycle: cycle}
}

// Run blocks, ticking every interval, until ctx is canceled. It returns
// ctx.Err() on exit.
func (s *Scheduler) Run(ctx context.Context) error {
	s.startedAt = time.Now()
	log.Info().Dur("interval", s.interval).Msg("scheduler starting")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Int64("cycles", s.cycles.Load()).Int64("skipped", s.skipped.Load()).Msg("scheduler stopping")
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs one cycle unless the previous one hasn't finished yet, in
// which case it's dropped — a slow cycle should never cause a pile-up of
// concurrent pipeline runs against the same providers. Run calls tick
// synchronously, so while a cycle runs the ticker itself drops the ticks
// that fall due, keeping one buffered that starts the next cycle right
// after this one; the dropped ones are added to the skipped count.
func (s *Scheduler) tick(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		log.Warn().Msg("scan cycle still running, skipping this tick")
		return
	}
	defer s.running.Store(false)

	start := time.Now()
	err := s.cycle(ctx)
	if dropped := int64(time.Since(start)/s.interval) - 1; dropped > 0 {
		s.skipped.Add(dropped)
		log.Warn().Int64("dropped_ticks", dropped).Msg("scan cycle overran its interval")
	}
	s.lastRun.Store(start)
	s.cycles.Add(1)
	if err != nil {
		s.lastErr.Store(&err)
		log.Error().Err(err).Dur("took", time.Since(start)).Msg("scan cycle failed")
		return
	}
	log.Debug().Dur("took", time.Since(start)).Msg("scan cycle completed")
}

// Status is a point-in-time snapshot for a health/status endpoint.
type Status struct {
	Running     bool
	StartedAt   time.Time
	LastRunAt   time.Time
	CycleCount  int64
	SkippedTicks int64
	LastError   string
}

func (s *Scheduler) Status() Status {
	st := Status{
		Running:      s.running.Load(),
		StartedAt:    s.startedAt,
		CycleCount:   s.cycles.Load(),
		SkippedTicks: s.skipped.Load(),
	}
	if v := s.lastRun.Load(); v != nil {
		st.LastRunAt = v.(time.Time)
	}
	if v := s.lastErr.Load(); v != nil && *v != nil {
		st.LastError = (*v).Error()
	}
	return st
}
