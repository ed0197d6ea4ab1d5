package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/opsroot/healthmon/model"
)

func TestEventsJSONLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")

	first := []model.MonitorEvent{
		model.NewEvent("cpu.saturation", "CPU pegged", model.SeverityCritical, "tip"),
	}
	second := []model.MonitorEvent{
		model.NewEvent("mem.high", "memory high", model.SeverityWarning, ""),
	}

	if err := WriteEventsJSONL(path, first); err != nil {
		t.Fatalf("first write: %v", err)
	}
	// Appends across sessions rather than truncating.
	if err := WriteEventsJSONL(path, second); err != nil {
		t.Fatalf("second write: %v", err)
	}

	got, err := ReadEventsJSONL(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("read %d events, want 2", len(got))
	}
	if got[0].Type != "cpu.saturation" || got[1].Type != "mem.high" {
		t.Errorf("types = %q, %q; want append order preserved", got[0].Type, got[1].Type)
	}
	if got[0].Severity != model.SeverityCritical {
		t.Errorf("severity = %v, want critical survives the round trip", got[0].Severity)
	}
}

func TestReadEventsJSONLMissingFile(t *testing.T) {
	got, err := ReadEventsJSONL(filepath.Join(t.TempDir(), "absent.jsonl"))
	if err != nil {
		t.Fatalf("missing file should not error, got %v", err)
	}
	if got != nil {
		t.Errorf("missing file returned %d events, want none", len(got))
	}
}

func TestReadEventsJSONLSkipsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	content := `{"type":"cpu.saturation","description":"pegged","severity":1}
this line is not json
{"type":"mem.high","description":"high","severity":0}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadEventsJSONL(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("read %d events, want 2 with the garbage line skipped", len(got))
	}
}
