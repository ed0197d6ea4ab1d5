//go:build linux

package probe

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/opsroot/healthmon/model"
)

// ProcfsInspector inspects /proc/<pid>/task to recover per-thread
// scheduling state and a categorical wait reason from the kernel wait
// channel.
type ProcfsInspector struct{}

func NewProcfsInspector() *ProcfsInspector { return &ProcfsInspector{} }

func (i *ProcfsInspector) ThreadStates(pid int32) ([]model.ThreadState, error) {
	taskDir := fmt.Sprintf("/proc/%d/task", pid)
	entries, err := os.ReadDir(taskDir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", taskDir, err)
	}

	var states []model.ThreadState
	for _, e := range entries {
		tid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		state, err := readTaskState(filepath.Join(taskDir, e.Name()))
		if err != nil {
			continue // thread exited mid-scan
		}
		ts := model.ThreadState{TID: tid}
		switch state {
		case 'R':
			ts.Running = true
		case 'T', 't':
			ts.Reason = model.WaitSuspended
		default:
			wchan, _ := os.ReadFile(filepath.Join(taskDir, e.Name(), "wchan"))
			ts.Reason = classifyWchan(strings.TrimSpace(string(wchan)), state)
		}
		states = append(states, ts)
	}
	if len(states) == 0 {
		return nil, fmt.Errorf("no live threads under %s", taskDir)
	}
	return states, nil
}

// readTaskState returns the single-letter state from the task's stat line.
// The comm field may contain spaces, so parse from the closing paren.
func readTaskState(dir string) (byte, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "stat"))
	if err != nil {
		return 0, err
	}
	s := string(raw)
	idx := strings.LastIndexByte(s, ')')
	if idx < 0 || idx+2 >= len(s) {
		return 0, fmt.Errorf("malformed stat line")
	}
	return s[idx+2], nil
}

// classifyWchan maps a kernel wait-channel symbol onto a wait category.
func classifyWchan(wchan string, state byte) model.WaitReason {
	switch {
	case strings.Contains(wchan, "futex"):
		return model.WaitSynchronization
	case strings.Contains(wchan, "poll"), strings.Contains(wchan, "select"),
		strings.Contains(wchan, "sk_wait"), strings.Contains(wchan, "sock"),
		strings.Contains(wchan, "unix_stream"), strings.Contains(wchan, "pipe_"):
		return model.WaitExternalRequest
	case strings.Contains(wchan, "folio"), strings.Contains(wchan, "wait_on_page"),
		strings.Contains(wchan, "swap"):
		return model.WaitPaging
	case strings.Contains(wchan, "reclaim"), strings.Contains(wchan, "oom"),
		strings.Contains(wchan, "mempool"):
		return model.WaitMemory
	case strings.Contains(wchan, "io_schedule"), strings.Contains(wchan, "blk_"),
		state == 'D':
		return model.WaitIO
	default:
		return model.WaitOther
	}
}
