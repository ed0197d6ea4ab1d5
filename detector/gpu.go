package detector

import (
	"fmt"
	"time"

	"github.com/opsroot/healthmon/model"
	"github.com/opsroot/healthmon/probe"
)

const (
	gpuUtilHighPct   = 95
	gpuVRAMHighPct   = 90
	gpuEventCooldown = 3 * time.Minute
)

// GPUDetector covers sustained GPU saturation and VRAM exhaustion. Hosts
// without a GPU report zeros and score full health.
type GPUDetector struct {
	probe *probe.GPUProbe

	util *condition
	vram *condition
}

func NewGPUDetector() *GPUDetector {
	return &GPUDetector{
		probe: probe.NewGPUProbe(),
		// Three consecutive breaches: short render spikes are normal.
		util: newCondition(3, gpuEventCooldown),
		vram: newCondition(2, gpuEventCooldown),
	}
}

func (d *GPUDetector) Name() string { return "gpu" }

func (d *GPUDetector) Collect(b *model.SampleBuilder) { d.probe.Collect(b) }

func (d *GPUDetector) Analyze(s *model.Sample, history []model.TrimmedSample) model.HealthAssessment {
	now := s.Timestamp
	score := 100.0
	var events []model.MonitorEvent
	var hint string

	fired := d.util.Observe(s.GPUUtilPercent > gpuUtilHighPct, now)
	if d.util.Breaching() {
		score -= 20
		hint = "GPU saturated"
	}
	if fired {
		events = append(events, model.NewEvent("gpu.util",
			fmt.Sprintf("GPU utilization pinned at %.0f%%", s.GPUUtilPercent),
			model.SeverityWarning,
			"A workload is monopolizing the GPU; UI rendering will stutter"))
	}

	if s.GPUMemoryUsedPercent > gpuVRAMHighPct {
		score -= 15
		if hint == "" {
			hint = "VRAM nearly exhausted"
		}
		if d.vram.Observe(true, now) {
			events = append(events, model.NewEvent("gpu.vram",
				fmt.Sprintf("VRAM usage at %.0f%%", s.GPUMemoryUsedPercent),
				model.SeverityWarning,
				"Textures will spill to system memory; close GPU-heavy applications"))
		}
	} else {
		d.vram.Observe(false, now)
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
