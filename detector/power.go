package detector

import (
	"fmt"
	"time"

	"github.com/opsroot/healthmon/model"
	"github.com/opsroot/healthmon/probe"
)

const (
	powerBusyPct       = 60
	powerEventCooldown = 30 * time.Minute
)

// PowerDetector flags a power-saving profile throttling a machine that is
// both mains-powered and busy.
type PowerDetector struct {
	probe    *probe.PlatformProbe
	throttle *condition
}

func NewPowerDetector() *PowerDetector {
	return &PowerDetector{
		probe:    probe.NewPlatformProbe(),
		throttle: newCondition(2, powerEventCooldown),
	}
}

func (d *PowerDetector) Name() string { return "power" }

func (d *PowerDetector) Collect(b *model.SampleBuilder) { d.probe.Collect(b) }

func (d *PowerDetector) Analyze(s *model.Sample, history []model.TrimmedSample) model.HealthAssessment {
	now := s.Timestamp
	score := 100.0
	var events []model.MonitorEvent
	var hint string

	throttled := s.PowerPlan == "powersave" && s.OnACPower && s.CPUPercent > powerBusyPct
	if throttled {
		score -= 15
		hint = "power profile throttling CPU"
	}
	if d.throttle.Observe(throttled, now) {
		events = append(events, model.NewEvent("power.plan",
			fmt.Sprintf("Power-saver profile active at %.0f%% CPU on AC power", s.CPUPercent),
			model.SeverityWarning,
			"The CPU is frequency-capped while under load; switch to a balanced or performance profile"))
	}

	return model.HealthAssessment{
		Score: model.HealthScore{
			Domain:     d.Name(),
			Score:      clampScore(score),
			Confidence: trendConfidence(len(history)),
			Hint:       hint,
		},
		Events: events,
	}
}
