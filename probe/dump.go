package probe

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/opsroot/healthmon/model"
)

// flagFragments are module-name fragments worth flagging during triage:
// graphics, storage, and network driver families with a history of
// wedging user processes.
var flagFragments = []string{
	"nvidia", "nouveau", "amdgpu", "radeon", "i915", "dxgkrnl",
	"nvme", "megaraid", "mpt3sas", "storport",
	"e1000", "ixgbe", "r8169", "iwlwifi", "ndis",
}

// ProcfsDumper produces a dump-like artifact from procfs instead of a real
// core: the per-thread kernel stacks (root only) and the mapped-module
// list. Cheap, non-disruptive to the target, and sufficient for
// substring-based triage.
type ProcfsDumper struct{}

func NewProcfsDumper() *ProcfsDumper { return &ProcfsDumper{} }

func (d *ProcfsDumper) CaptureAndSummarize(pid int32) (*model.DumpSummary, error) {
	base := fmt.Sprintf("/proc/%d", pid)
	if _, err := os.Stat(base); err != nil {
		return nil, fmt.Errorf("target gone: %w", err)
	}

	summary := &model.DumpSummary{}

	if raw, err := os.ReadFile(filepath.Join(base, "maps")); err == nil {
		seen := map[string]bool{}
		for _, line := range strings.Split(string(raw), "\n") {
			fields := strings.Fields(line)
			if len(fields) < 6 {
				continue
			}
			mod := filepath.Base(fields[5])
			if seen[mod] {
				continue
			}
			seen[mod] = true
			for _, frag := range flagFragments {
				if strings.Contains(strings.ToLower(mod), frag) {
					summary.FlaggedModules = append(summary.FlaggedModules, mod)
					break
				}
			}
		}
	}

	summary.StackFrames = collectKernelStacks(base)

	if len(summary.FlaggedModules) == 0 && len(summary.StackFrames) == 0 {
		return nil, fmt.Errorf("no triage data readable for pid %d", pid)
	}
	return summary, nil
}

// collectKernelStacks gathers up to a handful of kernel stack frames across
// the target's threads. Requires root; empty otherwise.
func collectKernelStacks(base string) []string {
	entries, err := os.ReadDir(filepath.Join(base, "task"))
	if err != nil {
		return nil
	}
	var frames []string
	for _, e := range entries {
		if _, err := strconv.Atoi(e.Name()); err != nil {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(base, "task", e.Name(), "stack"))
		if err != nil {
			continue
		}
		for _, line := range strings.Split(string(raw), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			frames = append(frames, line)
			if len(frames) >= 32 {
				return frames
			}
		}
	}
	return frames
}
