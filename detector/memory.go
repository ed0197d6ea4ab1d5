package detector

import (
	"fmt"
	"time"

	"github.com/opsroot/healthmon/model"
	"github.com/opsroot/healthmon/probe"
)

const (
	memHighPct        = 90
	memCritPct        = 96
	pressureHighIdx   = 70
	pressureCritIdx   = 85
	commitHighPct     = 90
	pageInStormPerSec = 300
	memEventCooldown  = 2 * time.Minute
)

// MemoryDetector covers physical memory exhaustion, commit-charge
// exhaustion, the composite pressure index, and paging storms.
type MemoryDetector struct {
	probe *probe.MemoryProbe

	highUsed *condition
	pressure *condition
	commit   *condition
	paging   *condition
}

func NewMemoryDetector() *MemoryDetector {
	return &MemoryDetector{
		probe:    probe.NewMemoryProbe(),
		highUsed: newCondition(2, memEventCooldown),
		pressure: newCondition(2, memEventCooldown),
		commit:   newCondition(2, memEventCooldown),
		paging:   newCondition(2, memEventCooldown),
	}
}

func (d *MemoryDetector) Name() string { return "memory" }

func (d *MemoryDetector) Collect(b *model.SampleBuilder) { d.probe.Collect(b) }

func (d *MemoryDetector) Analyze(s *model.Sample, history []model.TrimmedSample) model.HealthAssessment {
	now := s.Timestamp
	score := 100.0
	var events []model.MonitorEvent
	var hint string

	if s.MemoryUsedPercent > memHighPct {
		score -= 25
		hint = "memory nearly exhausted"
		sev := model.SeverityWarning
		if s.MemoryUsedPercent > memCritPct {
			score -= 10
			sev = model.SeverityCritical
		}
		if d.highUsed.Observe(true, now) {
			events = append(events, model.NewEvent("mem.high",
				fmt.Sprintf("Memory usage at %.0f%%", s.MemoryUsedPercent), sev,
				topConsumerTip(s.TopMemoryProcs, "memory")))
		}
	} else {
		d.highUsed.Observe(false, now)
	}

	if s.MemoryPressureIndex > pressureHighIdx {
		score -= 20
		if hint == "" {
			hint = "memory pressure building"
		}
		sev := model.SeverityWarning
		if s.MemoryPressureIndex > pressureCritIdx {
			score -= 10
			sev = model.SeverityCritical
		}
		if d.pressure.Observe(true, now) {
			events = append(events, model.NewEvent("mem.pressure",
				fmt.Sprintf("Memory pressure index at %.0f", s.MemoryPressureIndex), sev,
				"Commit charge and paging are both elevated; free memory or add swap"))
		}
	} else {
		d.pressure.Observe(false, now)
	}

	if s.CommitLimitBytes > 0 {
		commitPct := float64(s.CommittedBytes) / float64(s.CommitLimitBytes) * 100
		if commitPct > commitHighPct {
			score -= 15
			if d.commit.Observe(true, now) {
				events = append(events, model.NewEvent("mem.commit",
					fmt.Sprintf("Commit charge at %.0f%% of limit", commitPct),
					model.SeverityCritical,
					"Allocations will start failing at the commit limit; restart leaking processes"))
			}
		} else {
			d.commit.Observe(false, now)
		}
	}

	if s.PagesInputPerSec > pageInStormPerSec {
		score -= 15
		if d.paging.Observe(true, now) {
			events = append(events, model.NewEvent("mem.paging",
				fmt.Sprintf("Hard page-ins at %.0f/sec", s.PagesInputPerSec),
				model.SeverityWarning,
				"Working sets do not fit in RAM; the machine is thrashing against disk"))
		}
	} else {
		d.paging.Observe(false, now)
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
