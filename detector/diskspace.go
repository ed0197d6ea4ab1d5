package detector

import (
	"fmt"
	"time"

	"github.com/opsroot/healthmon/model"
	"github.com/opsroot/healthmon/probe"
)

const (
	spaceLowPct        = 10
	spaceCritPct       = 5
	spaceEventCooldown = 10 * time.Minute
)

// DiskSpaceDetector covers per-volume free space. Each mount gets its own
// debounce state and its own event type key.
type DiskSpaceDetector struct {
	probe  *probe.VolumeProbe
	mounts map[string]*condition
}

func NewDiskSpaceDetector() *DiskSpaceDetector {
	return &DiskSpaceDetector{
		probe:  probe.NewVolumeProbe(),
		mounts: make(map[string]*condition),
	}
}

func (d *DiskSpaceDetector) Name() string { return "diskspace" }

func (d *DiskSpaceDetector) Collect(b *model.SampleBuilder) { d.probe.Collect(b) }

func (d *DiskSpaceDetector) Analyze(s *model.Sample, history []model.TrimmedSample) model.HealthAssessment {
	now := s.Timestamp
	score := 100.0
	var events []model.MonitorEvent
	var hint string

	seen := make(map[string]bool, len(s.Volumes))
	for _, v := range s.Volumes {
		seen[v.Mount] = true
		cond, ok := d.mounts[v.Mount]
		if !ok {
			cond = newCondition(2, spaceEventCooldown)
			d.mounts[v.Mount] = cond
		}

		if v.FreePercent < spaceLowPct {
			score -= 15
			hint = fmt.Sprintf("%s low on space", v.Mount)
			sev := model.SeverityWarning
			if v.FreePercent < spaceCritPct {
				score -= 15
				sev = model.SeverityCritical
			}
			if cond.Observe(true, now) {
				events = append(events, model.NewEvent("space.low:"+v.Mount,
					fmt.Sprintf("%s has %.1f%% free (%.1f GB)", v.Mount, v.FreePercent,
						float64(v.FreeBytes)/(1<<30)),
					sev,
					"Full volumes stall writes and can wedge applications mid-save; free space now"))
			}
		} else {
			cond.Observe(false, now)
		}
	}

	// Drop state for unmounted volumes.
	for mount := range d.mounts {
		if !seen[mount] {
			delete(d.mounts, mount)
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
