package detector

import (
	"fmt"
	"strings"
	"time"

	"github.com/opsroot/healthmon/model"
)

const (
	browserMemBytes      = 8 << 30 // 8 GB across all browser processes
	browserCPUPct        = 50
	browserEventCooldown = 5 * time.Minute
)

// browserFamilies matches the multi-process browser process names whose
// combined footprint users chronically underestimate.
var browserFamilies = []string{"chrome", "chromium", "firefox", "msedge", "edge", "safari", "brave", "opera", "vivaldi"}

// BrowserDetector aggregates browser-family resource use from the top-N
// lists already collected. It has no Collect of its own.
type BrowserDetector struct {
	mem *condition
	cpu *condition
}

func NewBrowserDetector() *BrowserDetector {
	return &BrowserDetector{
		mem: newCondition(2, browserEventCooldown),
		cpu: newCondition(2, browserEventCooldown),
	}
}

func (d *BrowserDetector) Name() string { return "browser" }

func (d *BrowserDetector) Collect(b *model.SampleBuilder) {}

func (d *BrowserDetector) Analyze(s *model.Sample, history []model.TrimmedSample) model.HealthAssessment {
	now := s.Timestamp
	score := 100.0
	var events []model.MonitorEvent
	var hint string

	var memBytes, cpuPct float64
	for _, p := range s.TopMemoryProcs {
		if isBrowserProc(p.Name) {
			memBytes += p.Value
		}
	}
	for _, p := range s.TopCPUProcs {
		if isBrowserProc(p.Name) {
			cpuPct += p.Value
		}
	}

	if memBytes > browserMemBytes {
		score -= 15
		hint = "browser memory footprint heavy"
		if d.mem.Observe(true, now) {
			events = append(events, model.NewEvent("browser.memory",
				fmt.Sprintf("Browser processes holding %.1f GB", memBytes/(1<<30)),
				model.SeverityWarning,
				"Dozens of tabs cost real memory; close or discard idle tabs"))
		}
	} else {
		d.mem.Observe(false, now)
	}

	if cpuPct > browserCPUPct {
		score -= 10
		if hint == "" {
			hint = "browser CPU use heavy"
		}
		if d.cpu.Observe(true, now) {
			events = append(events, model.NewEvent("browser.cpu",
				fmt.Sprintf("Browser processes using %.0f%% CPU", cpuPct),
				model.SeverityWarning,
				"A tab is likely spinning; check for runaway scripts or video in background tabs"))
		}
	} else {
		d.cpu.Observe(false, now)
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

func isBrowserProc(name string) bool {
	lower := strings.ToLower(name)
	for _, fam := range browserFamilies {
		if strings.Contains(lower, fam) {
			return true
		}
	}
	return false
}
