// Package detector holds the per-domain health detectors. Each detector
// fills the shared sample builder during Collect and, given the built
// sample plus a bounded history window, produces a domain health score and
// zero or more new events during Analyze.
package detector

import (
	"github.com/opsroot/healthmon/logger"
	"github.com/opsroot/healthmon/model"
)

// Detector is the capability interface every domain implements.
type Detector interface {
	Name() string
	Collect(b *model.SampleBuilder)
	Analyze(s *model.Sample, history []model.TrimmedSample) model.HealthAssessment
}

// Registry runs detectors sequentially and isolates each one's failures:
// a panicking detector never prevents the others, or the tick, from
// completing.
type Registry struct {
	detectors []Detector
}

// NewRegistry creates a registry over the given detectors.
func NewRegistry(detectors ...Detector) *Registry {
	return &Registry{detectors: detectors}
}

// Defaults returns the full detector set.
func Defaults() []Detector {
	return []Detector{
		NewCPUDetector(),
		NewMemoryDetector(),
		NewDiskDetector(),
		NewGPUDetector(),
		NewNetworkDetector(),
		NewProcessDetector(),
		NewDiskSpaceDetector(),
		NewBrowserDetector(),
		NewPowerDetector(),
		NewStartupDetector(),
	}
}

// CollectAll invokes every detector's Collect against the builder.
func (r *Registry) CollectAll(b *model.SampleBuilder) {
	for _, d := range r.detectors {
		r.collectOne(d, b)
	}
}

func (r *Registry) collectOne(d Detector, b *model.SampleBuilder) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Warn().Str("detector", d.Name()).Interface("panic", rec).Msg("collect failed")
		}
	}()
	d.Collect(b)
}

// AnalyzeAll invokes every detector's Analyze and gathers the assessments.
// A panicking detector contributes a neutral full-health score with zero
// confidence.
func (r *Registry) AnalyzeAll(s *model.Sample, history []model.TrimmedSample) []model.HealthAssessment {
	out := make([]model.HealthAssessment, 0, len(r.detectors))
	for _, d := range r.detectors {
		out = append(out, r.analyzeOne(d, s, history))
	}
	return out
}

func (r *Registry) analyzeOne(d Detector, s *model.Sample, history []model.TrimmedSample) (a model.HealthAssessment) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Warn().Str("detector", d.Name()).Interface("panic", rec).Msg("analyze failed")
			a = model.HealthAssessment{Score: model.HealthScore{Domain: d.Name(), Score: 100}}
		}
	}()
	return d.Analyze(s, history)
}

// clampScore bounds a health score to [0,100].
func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// trendConfidence ramps from 0 toward 1 as history accumulates; a domain
// needs a few samples before trend-based detections are trusted.
func trendConfidence(historyLen int) float64 {
	c := float64(historyLen) / 3
	if c > 1 {
		return 1
	}
	return c
}
