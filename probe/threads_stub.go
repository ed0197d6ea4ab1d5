//go:build !linux

package probe

import (
	"errors"

	"github.com/opsroot/healthmon/model"
)

var errUnsupported = errors.New("thread introspection unsupported on this platform")

// ProcfsInspector is a stub on non-Linux targets.
type ProcfsInspector struct{}

func NewProcfsInspector() *ProcfsInspector { return &ProcfsInspector{} }

func (i *ProcfsInspector) ThreadStates(pid int32) ([]model.ThreadState, error) {
	return nil, errUnsupported
}
