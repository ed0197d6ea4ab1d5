package probe

import "github.com/opsroot/healthmon/model"

// ThreadInspector is the capability contract for live thread introspection:
// given a pid, report each thread's running/waiting state and, when
// waiting, a categorical reason. Platforms without an implementation
// return an error, which the deep investigator degrades around.
type ThreadInspector interface {
	ThreadStates(pid int32) ([]model.ThreadState, error)
}

// DumpCapturer is the capability contract for best-effort crash-dump
// capture and triage of a hung process.
type DumpCapturer interface {
	CaptureAndSummarize(pid int32) (*model.DumpSummary, error)
}
