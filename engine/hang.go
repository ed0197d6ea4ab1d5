package engine

import (
	"fmt"
	"time"

	"github.com/opsroot/healthmon/model"
)

// hangTracker owns the per-process hang events. It is separate from the
// generic dedup because several processes can hang at once, each with its
// own start time, live duration annotation, and recovery message.
type hangTracker struct {
	starts map[string]time.Time
}

func newHangTracker() *hangTracker {
	return &hangTracker{starts: make(map[string]time.Time)}
}

// Elapsed returns how long the named process has been hanging, registering
// the first sighting at now.
func (t *hangTracker) Elapsed(name string, now time.Time) time.Duration {
	start, ok := t.starts[name]
	if !ok {
		t.starts[name] = now
		return 0
	}
	return now.Sub(start)
}

// Update refreshes every hang event against the current sample: live
// entries get the current duration and latest classified cause, vanished
// names get a single recovery rewrite.
func (t *hangTracker) Update(s *model.Sample, log *EventLog, now time.Time) {
	current := make(map[string]bool, len(s.HangingProcs))
	for _, hp := range s.HangingProcs {
		current[hp.Name] = true
		start, ok := t.starts[hp.Name]
		if !ok {
			start = now
			t.starts[hp.Name] = start
		}

		key := hangKeyPrefix + hp.Name
		log.Raise(model.MonitorEvent{
			Timestamp: start,
			Type:      key,
			Base:      fmt.Sprintf("Process %s (pid %d) is not responding", hp.Name, hp.PID),
			Severity:  model.SeverityCritical,
			Tip:       "If this persists, capture the deep diagnosis below before killing the process",
		})

		status := fmt.Sprintf("hanging %.0fs", now.Sub(start).Seconds())
		if cause := latestCause(s, hp.Name); cause != "" {
			status += ", likely " + cause
		}
		log.SetStatus(key, status)
	}

	for name, start := range t.starts {
		if current[name] {
			continue
		}
		log.Resolve(hangKeyPrefix+name,
			fmt.Sprintf("recovered after %.0fs", now.Sub(start).Seconds()))
		delete(t.starts, name)
	}
}

// latestCause prefers the deep diagnosis over the quick one. Both carry
// the process they targeted; a diagnosis for one hang never annotates
// another.
func latestCause(s *model.Sample, name string) string {
	if s.DeepFreeze != nil && s.DeepFreeze.ProcessName == name {
		return s.DeepFreeze.Category.String()
	}
	if s.Freeze != nil && s.Freeze.ProcessName == name {
		return string(s.Freeze.Cause)
	}
	return ""
}
