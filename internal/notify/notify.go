// Package notify delivers a Signal to whatever downstream channel a
// deployment wires up; the reference implementation just logs it.
package notify

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/memescan/internal/model"
)

// Notifier delivers a fully-scored signal. Implementations must not
// block the pipeline indefinitely — respect ctx.
type Notifier interface {
	NotifySignal(ctx context.Context, sig *model.Signal) error
	NotifyDiscovery(ctx context.Context, addr model.TokenAddress, score float64) error
}

// LogNotifier writes signals and discoveries to the structured logger.
// It's the default Notifier wired when no webhook/queue is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) NotifySignal(ctx context.Context, sig *model.Signal) error {
	log.Info().
		Str("signal_id", sig.ID).
		Str("track", string(sig.Track)).
		Str("token", sig.TokenMetrics.DisplayName()).
		Str("recommendation", string(sig.OnChainScore.Recommendation)).
		Float64("score", sig.OnChainScore.AdjustedTotal).
		Str("risk", string(sig.OnChainScore.RiskLevel)).
		Str("position_size", sig.SuggestedPositionSize.String()).
		Msg("signal emitted")
	return nil
}

func (n *LogNotifier) NotifyDiscovery(ctx context.Context, addr model.TokenAddress, score float64) error {
	log.Info().Str("token", string(addr)).Float64("score", score).Msg("discovery recorded")
	return nil
}

// MultiNotifier fans a signal out to every wrapped Notifier, continuing
// past a failing one rather than aborting the whole broadcast.
type MultiNotifier struct {
	notifiers []Notifier
}

func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{notifiers: notifiers}
}

func (m *MultiNotifier) NotifySignal(ctx context.Context, sig *model.Signal) error {
	var firstErr error
	for _, n := range m.notifiers {
		if err := n.NotifySignal(ctx, sig); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *MultiNotifier) NotifyDiscovery(ctx context.Context, addr model.TokenAddress, score float64) error {
	var firstErr error
	for _, n := range m.notifiers {
		if err := n.NotifyDiscovery(ctx, addr, score); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
