package engine

import (
	"context"
	"time"

	"github.com/opsroot/healthmon/logger"
	"github.com/opsroot/healthmon/model"
)

// TickFunc receives every completed tick. Returning false stops the loop.
type TickFunc func(s *model.Sample, assessments []model.HealthAssessment) bool

// Run drives the fixed-interval tick loop until the context is cancelled,
// the optional duration elapses, or the callback asks to stop. In-flight
// background diagnostics are abandoned on exit; they only write to
// mailboxes nobody will read again.
func (e *Engine) Run(ctx context.Context, interval, duration time.Duration, onTick TickFunc) {
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info().Dur("interval", interval).Msg("monitoring started")

	// First tick immediately; rate-based signals warm up on the second.
	if !e.step(onTick) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("monitoring stopped")
			return
		case <-ticker.C:
			if !e.step(onTick) {
				return
			}
		}
	}
}

func (e *Engine) step(onTick TickFunc) bool {
	s, assessments := e.Tick()
	if onTick != nil {
		return onTick(s, assessments)
	}
	return true
}
