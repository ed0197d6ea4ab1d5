package probe

import "testing"

func TestSessionErrorCount(t *testing.T) {
	p := NewDiskProbe()

	// A machine with historical errors reports zero until new ones occur.
	if got := p.sessionErrorCount(7); got != 0 {
		t.Fatalf("first read with stale counter = %d, want 0", got)
	}
	if got := p.sessionErrorCount(7); got != 0 {
		t.Errorf("unchanged counter = %d, want 0", got)
	}

	// Growth during the session surfaces as the delta from the baseline.
	if got := p.sessionErrorCount(9); got != 2 {
		t.Errorf("after two new errors = %d, want 2", got)
	}
	if got := p.sessionErrorCount(9); got != 2 {
		t.Errorf("stable after growth = %d, want 2", got)
	}

	// A shrinking counter (device removed, counter reset) re-baselines.
	if got := p.sessionErrorCount(1); got != 0 {
		t.Errorf("after counter reset = %d, want 0", got)
	}
	if got := p.sessionErrorCount(3); got != 2 {
		t.Errorf("growth after re-baseline = %d, want 2", got)
	}
}

func TestSessionErrorCountCleanMachine(t *testing.T) {
	p := NewDiskProbe()
	if got := p.sessionErrorCount(0); got != 0 {
		t.Fatalf("clean machine = %d, want 0", got)
	}
	if got := p.sessionErrorCount(1); got != 1 {
		t.Errorf("first ever error = %d, want 1", got)
	}
}
