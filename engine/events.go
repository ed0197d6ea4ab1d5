package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/opsroot/healthmon/model"
)

// hangKeyPrefix marks event-type keys owned by the hang tracker, which
// manages their lifecycle itself; the generic sweep leaves them alone.
const hangKeyPrefix = "hang:"

// EventLog is the live, deduplicated event stream. It holds at most one
// active event per type key: a re-fired key refreshes the existing entry's
// status instead of duplicating it, and a key that stops firing is closed
// out once with a resolved status. The total log is capped, oldest entries
// evicted first.
type EventLog struct {
	entries []*model.MonitorEvent
	active  map[string]*model.MonitorEvent
	cap     int
}

// NewEventLog creates a log bounded to capacity entries.
func NewEventLog(capacity int) *EventLog {
	if capacity < 1 {
		capacity = 1
	}
	return &EventLog{active: make(map[string]*model.MonitorEvent), cap: capacity}
}

// Merge folds this tick's newly raised events into the log, then closes
// out any generic active key that did not re-fire.
func (l *EventLog) Merge(events []model.MonitorEvent, now time.Time) {
	refreshed := make(map[string]bool, len(events))
	for _, ev := range events {
		refreshed[ev.Type] = true
		if existing, ok := l.active[ev.Type]; ok {
			existing.Status = ongoingStatus(existing.Timestamp, now)
			if ev.Severity > existing.Severity {
				existing.Severity = ev.Severity
			}
			continue
		}
		l.append(ev)
	}

	for key, entry := range l.active {
		if refreshed[key] || strings.HasPrefix(key, hangKeyPrefix) {
			continue
		}
		entry.Status = resolvedStatus(entry.Timestamp, now)
		delete(l.active, key)
	}
}

// Raise inserts or refreshes an event outside the generic sweep. Used by
// the hang tracker. Returns the live entry.
func (l *EventLog) Raise(ev model.MonitorEvent) *model.MonitorEvent {
	if existing, ok := l.active[ev.Type]; ok {
		return existing
	}
	return l.append(ev)
}

// SetStatus rewrites the status suffix of an active entry.
func (l *EventLog) SetStatus(key, status string) {
	if entry, ok := l.active[key]; ok {
		entry.Status = status
	}
}

// Resolve closes an active entry with a final status.
func (l *EventLog) Resolve(key, status string) {
	if entry, ok := l.active[key]; ok {
		entry.Status = status
		delete(l.active, key)
	}
}

// Events returns a snapshot copy of the log, oldest first.
func (l *EventLog) Events() []model.MonitorEvent {
	out := make([]model.MonitorEvent, len(l.entries))
	for i, e := range l.entries {
		out[i] = *e
	}
	return out
}

// ActiveCount returns the number of currently active keys.
func (l *EventLog) ActiveCount() int { return len(l.active) }

func (l *EventLog) append(ev model.MonitorEvent) *model.MonitorEvent {
	entry := &ev
	l.entries = append(l.entries, entry)
	l.active[ev.Type] = entry
	if len(l.entries) > l.cap {
		evicted := l.entries[0]
		l.entries = l.entries[1:]
		if l.active[evicted.Type] == evicted {
			delete(l.active, evicted.Type)
		}
	}
	return entry
}

func ongoingStatus(since, now time.Time) string {
	return fmt.Sprintf("ongoing %.0fs", now.Sub(since).Seconds())
}

func resolvedStatus(since, now time.Time) string {
	return fmt.Sprintf("resolved after %.0fs", now.Sub(since).Seconds())
}
