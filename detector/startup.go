package detector

import (
	"fmt"

	"github.com/opsroot/healthmon/model"
)

const (
	startupEntriesHigh = 25
	bootSlowSeconds    = 90
)

// StartupDetector reports boot-time load: autostart entry count and boot
// duration. Both signals are static for a session, so each event fires at
// most once.
type StartupDetector struct {
	reportedEntries bool
	reportedBoot    bool
}

func NewStartupDetector() *StartupDetector { return &StartupDetector{} }

func (d *StartupDetector) Name() string { return "startup" }

// Collect is empty: the platform probe owned by the power detector already
// fills the startup fields, and running systemd-analyze twice per tick
// buys nothing.
func (d *StartupDetector) Collect(b *model.SampleBuilder) {}

func (d *StartupDetector) Analyze(s *model.Sample, history []model.TrimmedSample) model.HealthAssessment {
	score := 100.0
	var events []model.MonitorEvent
	var hint string

	if s.StartupProgramCount > startupEntriesHigh {
		score -= 10
		hint = "heavy autostart load"
		if !d.reportedEntries {
			d.reportedEntries = true
			events = append(events, model.NewEvent("startup.entries",
				fmt.Sprintf("%d programs registered to start at login", s.StartupProgramCount),
				model.SeverityWarning,
				"Each autostart entry costs login time and background memory; prune the list"))
		}
	}

	if s.BootSeconds > bootSlowSeconds {
		score -= 10
		if hint == "" {
			hint = "slow boot"
		}
		if !d.reportedBoot {
			d.reportedBoot = true
			events = append(events, model.NewEvent("startup.boot",
				fmt.Sprintf("Last boot took %.0fs", s.BootSeconds),
				model.SeverityWarning,
				"Check systemd-analyze blame for the slowest units"))
		}
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
