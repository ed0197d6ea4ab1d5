package detector

import (
	"fmt"
	"time"

	"github.com/opsroot/healthmon/model"
	"github.com/opsroot/healthmon/probe"
)

const (
	diskLatencyHighMs = 100
	diskLatencyCritMs = 250
	diskQueueHigh     = 4
	diskEventCooldown = 2 * time.Minute
)

// DiskDetector covers device latency, queue depth, and hardware-reported
// storage errors.
type DiskDetector struct {
	probe *probe.DiskProbe

	latency *condition
	queue   *condition
	errs    *condition

	lastErrCount int
}

func NewDiskDetector() *DiskDetector {
	return &DiskDetector{
		probe:   probe.NewDiskProbe(),
		latency: newCondition(2, diskEventCooldown),
		queue:   newCondition(2, diskEventCooldown),
		errs:    newCondition(1, diskEventCooldown),
	}
}

func (d *DiskDetector) Name() string { return "disk" }

func (d *DiskDetector) Collect(b *model.SampleBuilder) { d.probe.Collect(b) }

func (d *DiskDetector) Analyze(s *model.Sample, history []model.TrimmedSample) model.HealthAssessment {
	now := s.Timestamp
	score := 100.0
	var events []model.MonitorEvent
	var hint string

	maxLat := s.MaxDiskLatencyMs()
	if maxLat > diskLatencyHighMs {
		score -= 25
		hint = "disk latency elevated"
		sev := model.SeverityWarning
		if maxLat > diskLatencyCritMs {
			score -= 10
			sev = model.SeverityCritical
		}
		if d.latency.Observe(true, now) {
			events = append(events, model.NewEvent("disk.latency",
				fmt.Sprintf("Disk service time at %.0fms (read %.0f / write %.0f)",
					maxLat, s.DiskReadLatencyMs, s.DiskWriteLatencyMs), sev,
				"Storage cannot keep up; check device health and competing IO load"))
		}
	} else {
		d.latency.Observe(false, now)
	}

	if s.DiskQueueLength > diskQueueHigh {
		score -= 15
		if hint == "" {
			hint = "disk queue building"
		}
		if d.queue.Observe(true, now) {
			events = append(events, model.NewEvent("disk.queue",
				fmt.Sprintf("Disk queue depth at %.0f", s.DiskQueueLength),
				model.SeverityWarning,
				topConsumerTip(s.TopIOProcs, "IO")))
		}
	} else {
		d.queue.Observe(false, now)
	}

	// The sample already carries session-relative error counts; fire on
	// growth so one burst raises one episode.
	grew := s.StorageErrorCount > d.lastErrCount
	if s.StorageErrorCount > 0 {
		if grew {
			score -= 30
			hint = "storage reporting hardware errors"
		}
		if d.errs.Observe(grew, now) {
			events = append(events, model.NewEvent("disk.errors",
				fmt.Sprintf("Storage error count rose to %d", s.StorageErrorCount),
				model.SeverityCritical,
				"Hardware-level IO errors detected; back up the volume and check SMART data"))
		}
	} else {
		d.errs.Observe(false, now)
	}
	d.lastErrCount = s.StorageErrorCount

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
