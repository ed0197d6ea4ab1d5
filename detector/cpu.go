package detector

import (
	"fmt"
	"time"

	"github.com/opsroot/healthmon/model"
	"github.com/opsroot/healthmon/probe"
)

const (
	cpuHighPct       = 90
	cpuCritPct       = 97
	dpcHighPct       = 15
	ctxSwitchStorm   = 50000
	cpuEventCooldown = 2 * time.Minute
)

// CPUDetector covers CPU saturation and scheduler pathology: sustained
// busy, deferred-work theft, and run-queue congestion.
type CPUDetector struct {
	probe *probe.CPUProbe

	highCPU  *condition
	highDPC  *condition
	runQueue *condition
	ctxStorm *condition
}

func NewCPUDetector() *CPUDetector {
	return &CPUDetector{
		probe:    probe.NewCPUProbe(),
		highCPU:  newCondition(2, cpuEventCooldown),
		highDPC:  newCondition(2, cpuEventCooldown),
		runQueue: newCondition(2, cpuEventCooldown),
		ctxStorm: newCondition(2, cpuEventCooldown),
	}
}

func (d *CPUDetector) Name() string { return "cpu" }

func (d *CPUDetector) Collect(b *model.SampleBuilder) { d.probe.Collect(b) }

func (d *CPUDetector) Analyze(s *model.Sample, history []model.TrimmedSample) model.HealthAssessment {
	now := s.Timestamp
	score := 100.0
	var events []model.MonitorEvent
	var hint string

	if s.CPUPercent > cpuHighPct {
		score -= 25
		hint = "CPU saturated"
		sev := model.SeverityWarning
		if s.CPUPercent > cpuCritPct {
			score -= 10
			sev = model.SeverityCritical
		}
		if d.highCPU.Observe(true, now) {
			events = append(events, model.NewEvent("cpu.saturation",
				fmt.Sprintf("CPU usage at %.0f%%", s.CPUPercent), sev,
				topConsumerTip(s.TopCPUProcs, "CPU")))
		}
	} else {
		d.highCPU.Observe(false, now)
	}

	if s.DPCPercent > dpcHighPct {
		score -= 20
		if hint == "" {
			hint = "interrupt/DPC time elevated"
		}
		if d.highDPC.Observe(true, now) {
			events = append(events, model.NewEvent("cpu.dpc",
				fmt.Sprintf("Deferred interrupt work consuming %.1f%% of CPU time", s.DPCPercent),
				model.SeverityWarning,
				"A driver is monopolizing interrupt handling; check storage and network driver versions"))
		}
	} else {
		d.highDPC.Observe(false, now)
	}

	queueLimit := float64(2 * s.CoreCount)
	if s.CoreCount > 0 && s.ProcessorQueueLength > queueLimit {
		score -= 15
		if d.runQueue.Observe(true, now) {
			events = append(events, model.NewEvent("cpu.queue",
				fmt.Sprintf("Run queue at %.0f with %d cores", s.ProcessorQueueLength, s.CoreCount),
				model.SeverityWarning,
				"More runnable threads than the CPU can service; close background workloads"))
		}
	} else {
		d.runQueue.Observe(false, now)
	}

	if s.ContextSwitchesPerSec > ctxSwitchStorm {
		score -= 10
		if d.ctxStorm.Observe(true, now) {
			events = append(events, model.NewEvent("cpu.ctxswitch",
				fmt.Sprintf("Context switches at %.0f/sec", s.ContextSwitchesPerSec),
				model.SeverityWarning,
				"Heavy lock churn or oversubscribed thread pools are thrashing the scheduler"))
		}
	} else {
		d.ctxStorm.Observe(false, now)
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

func topConsumerTip(list []model.ProcessInfo, what string) string {
	if len(list) == 0 {
		return ""
	}
	return fmt.Sprintf("Top %s consumer: %s (pid %d)", what, list[0].Name, list[0].PID)
}
