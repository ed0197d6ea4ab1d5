package probe

import (
	"context"
	"os/exec"
	"time"
)

const toolTimeout = 3 * time.Second

// RunTool executes an external diagnostic utility with a hard timeout and
// returns its combined output. Callers treat any error as "tool absent":
// it must never surface past the probe boundary.
func RunTool(name string, args ...string) (string, error) {
	return RunToolCtx(context.Background(), name, args...)
}

// RunToolCtx is RunTool with caller-controlled cancellation layered under
// the standard timeout.
func RunToolCtx(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, toolTimeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}
