package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestInitWriterRoutesToSink(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, false, false)

	Warn().Str("component", "probe").Msg("partial sample")

	out := buf.String()
	if !strings.Contains(out, "partial sample") {
		t.Errorf("sink missing the warn message, got %q", out)
	}
	if !strings.Contains(out, `"component":"probe"`) {
		t.Errorf("sink missing the structured field, got %q", out)
	}
}

func TestInitWriterLevelGating(t *testing.T) {
	tests := []struct {
		name     string
		debug    bool
		verbose  bool
		wantInfo bool
		wantDbg  bool
	}{
		{"default warn", false, false, false, false},
		{"verbose", false, true, true, false},
		{"debug", true, false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			InitWriter(&buf, tt.debug, tt.verbose)

			Debug().Msg("dbgline")
			Info().Msg("infoline")
			Warn().Msg("warnline")

			out := buf.String()
			if !strings.Contains(out, "warnline") {
				t.Errorf("warn suppressed, got %q", out)
			}
			if got := strings.Contains(out, "infoline"); got != tt.wantInfo {
				t.Errorf("info emitted = %v, want %v", got, tt.wantInfo)
			}
			if got := strings.Contains(out, "dbgline"); got != tt.wantDbg {
				t.Errorf("debug emitted = %v, want %v", got, tt.wantDbg)
			}
		})
	}
}
