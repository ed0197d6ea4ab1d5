package model

import "time"

// MetricSummary is one metric's session-wide average and peak.
type MetricSummary struct {
	Name string  `json:"name"`
	Avg  float64 `json:"avg"`
	Peak float64 `json:"peak"`
}

// Report is the end-of-session summary assembled by the engine.
type Report struct {
	StartTime   time.Time       `json:"start_time"`
	EndTime     time.Time       `json:"end_time"`
	SampleCount int             `json:"sample_count"`
	Metrics     []MetricSummary `json:"metrics"`
	Events      []MonitorEvent  `json:"events"`
	FreezeCount int             `json:"freeze_count"`
}
