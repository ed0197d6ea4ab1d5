package detector

import (
	"fmt"
	"time"

	"github.com/opsroot/healthmon/model"
	"github.com/opsroot/healthmon/probe"
)

const (
	handleLeakCount   = 10000
	threadExplosion   = 500
	faultStormPerSec  = 1000
	procEventCooldown = 5 * time.Minute
)

// ProcessDetector covers per-process anomalies among the hanging and top-N
// lists: handle leaks, thread explosions, and fault storms. The hang events
// themselves are owned by the engine's hang tracker.
type ProcessDetector struct {
	probe *probe.ProcessProbe

	handles *condition
	threads *condition
	faults  *condition
}

func NewProcessDetector() *ProcessDetector {
	return &ProcessDetector{
		probe:   probe.NewProcessProbe(),
		handles: newCondition(2, procEventCooldown),
		threads: newCondition(2, procEventCooldown),
		faults:  newCondition(2, procEventCooldown),
	}
}

func (d *ProcessDetector) Name() string { return "process" }

func (d *ProcessDetector) Collect(b *model.SampleBuilder) { d.probe.Collect(b) }

func (d *ProcessDetector) Analyze(s *model.Sample, history []model.TrimmedSample) model.HealthAssessment {
	now := s.Timestamp
	score := 100.0
	var events []model.MonitorEvent
	var hint string

	var worstHandles, worstThreads *model.HangingProcess
	for i := range s.HangingProcs {
		hp := &s.HangingProcs[i]
		if hp.HandleCount > handleLeakCount && (worstHandles == nil || hp.HandleCount > worstHandles.HandleCount) {
			worstHandles = hp
		}
		if hp.ThreadCount > threadExplosion && (worstThreads == nil || hp.ThreadCount > worstThreads.ThreadCount) {
			worstThreads = hp
		}
	}

	if worstHandles != nil {
		score -= 20
		hint = "handle leak suspected"
		if d.handles.Observe(true, now) {
			events = append(events, model.NewEvent("proc.handles",
				fmt.Sprintf("%s holds %d handles", worstHandles.Name, worstHandles.HandleCount),
				model.SeverityWarning,
				"Handle counts this high usually mean a leak; restart the process"))
		}
	} else {
		d.handles.Observe(false, now)
	}

	if worstThreads != nil {
		score -= 15
		if hint == "" {
			hint = "thread count runaway"
		}
		if d.threads.Observe(true, now) {
			events = append(events, model.NewEvent("proc.threads",
				fmt.Sprintf("%s running %d threads", worstThreads.Name, worstThreads.ThreadCount),
				model.SeverityWarning,
				"Unbounded thread creation; the pool is likely starved, not busy"))
		}
	} else {
		d.threads.Observe(false, now)
	}

	if len(s.TopFaultProcs) > 0 && s.TopFaultProcs[0].Value > faultStormPerSec {
		score -= 15
		top := s.TopFaultProcs[0]
		if d.faults.Observe(true, now) {
			events = append(events, model.NewEvent("proc.faults",
				fmt.Sprintf("%s faulting at %.0f pages/sec", top.Name, top.Value),
				model.SeverityWarning,
				"One process is thrashing its working set; it needs more RAM or fewer mappings"))
		}
	} else {
		d.faults.Observe(false, now)
	}

	if len(s.HangingProcs) > 0 {
		score -= 25
		hint = fmt.Sprintf("%d process(es) unresponsive", len(s.HangingProcs))
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
