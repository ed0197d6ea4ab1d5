package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/opsroot/healthmon/model"
)

// BuildReport assembles the end-of-session summary: per-metric average and
// peak, the full event list, and how many freeze classifications ran.
func (e *Engine) BuildReport(startTime, endTime time.Time, sampleCount int) model.Report {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()
	return model.Report{
		StartTime:   startTime,
		EndTime:     endTime,
		SampleCount: sampleCount,
		Metrics:     e.stats.Summaries(),
		Events:      e.events.Events(),
		FreezeCount: e.freezeCount,
	}
}

// Report builds the session report from the engine's own clock and
// counters.
func (e *Engine) Report() model.Report {
	e.tickMu.Lock()
	count := e.sampleCount
	start := e.startTime
	e.tickMu.Unlock()
	return e.BuildReport(start, time.Now(), count)
}

// RenderReport formats a report for plain-text output.
func RenderReport(r model.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Session %s — %s (%d samples)\n",
		r.StartTime.Format(time.RFC3339), r.EndTime.Format(time.RFC3339), r.SampleCount)
	fmt.Fprintf(&sb, "Freeze classifications: %d\n\n", r.FreezeCount)

	fmt.Fprintf(&sb, "%-28s %12s %12s\n", "metric", "avg", "peak")
	for _, m := range r.Metrics {
		fmt.Fprintf(&sb, "%-28s %12.2f %12.2f\n", m.Name, m.Avg, m.Peak)
	}

	if len(r.Events) > 0 {
		sb.WriteString("\nEvents:\n")
		for _, ev := range r.Events {
			fmt.Fprintf(&sb, "  [%s] %s %s: %s\n",
				ev.Timestamp.Format("15:04:05"), ev.Severity, ev.Type, ev.Description())
			if ev.Tip != "" {
				fmt.Fprintf(&sb, "           tip: %s\n", ev.Tip)
			}
		}
	}
	return sb.String()
}
