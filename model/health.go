package model

import (
	"fmt"
	"time"
)

// Severity classifies how urgent an event is.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "WARNING"
	case SeverityCritical:
		return "CRITICAL"
	}
	return "UNKNOWN"
}

// HealthScore is one domain's verdict for a tick. Score is 0..100 (higher
// is healthier); Confidence ramps from 0 toward 1 as the domain accumulates
// enough history to trust trend-based detections.
type HealthScore struct {
	Domain     string  `json:"domain"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
	Hint       string  `json:"hint,omitempty"`
}

// HealthAssessment is a domain score plus the events newly raised this tick.
type HealthAssessment struct {
	Score  HealthScore
	Events []MonitorEvent
}

// MonitorEvent is one diagnostic finding. Type is the dedup identity: the
// live event log holds at most one active event per Type at any time.
//
// The base description is stable for the lifetime of the event; the status
// suffix ("ongoing 12s", "resolved after 40s") is derived state rendered
// by Description, never folded back into the base string.
type MonitorEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	Base      string    `json:"description"`
	Severity  Severity  `json:"severity"`
	Tip       string    `json:"tip,omitempty"`
	Status    string    `json:"status,omitempty"`
}

// NewEvent builds an event with an empty status suffix.
func NewEvent(eventType, description string, sev Severity, tip string) MonitorEvent {
	return MonitorEvent{
		Timestamp: time.Now(),
		Type:      eventType,
		Base:      description,
		Severity:  sev,
		Tip:       tip,
	}
}

// Description renders the base description with the current status suffix.
func (e MonitorEvent) Description() string {
	if e.Status == "" {
		return e.Base
	}
	return fmt.Sprintf("%s (%s)", e.Base, e.Status)
}
