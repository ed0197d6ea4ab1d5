package probe

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/opsroot/healthmon/model"
)

// PlatformProbe reads the active power profile, AC state, and startup-load
// signals (autostart entry count, boot duration). All best-effort.
type PlatformProbe struct {
	bootParsed  bool
	bootSeconds float64
}

func NewPlatformProbe() *PlatformProbe { return &PlatformProbe{} }

func (p *PlatformProbe) Collect(b *model.SampleBuilder) {
	b.PowerPlan = readPowerPlan()
	b.OnACPower = readACOnline()
	b.StartupProgramCount = countAutostartEntries()

	if !p.bootParsed {
		p.bootParsed = true
		p.bootSeconds = readBootSeconds()
	}
	b.BootSeconds = p.bootSeconds
}

// readPowerPlan maps the cpufreq scaling governor onto the plan names the
// detectors key on: "powersave", "balanced", "performance".
func readPowerPlan() string {
	raw, err := os.ReadFile("/sys/devices/system/cpu/cpu0/cpufreq/scaling_governor")
	if err != nil {
		return ""
	}
	switch gov := strings.TrimSpace(string(raw)); gov {
	case "powersave", "performance":
		return gov
	case "schedutil", "ondemand", "conservative":
		return "balanced"
	default:
		return gov
	}
}

func readACOnline() bool {
	entries, err := os.ReadDir("/sys/class/power_supply")
	if err != nil {
		// No power-supply class at all: assume mains-powered (server).
		return true
	}
	sawAC := false
	for _, e := range entries {
		name := strings.ToUpper(e.Name())
		if !strings.HasPrefix(name, "AC") && !strings.HasPrefix(name, "ADP") {
			continue
		}
		sawAC = true
		raw, err := os.ReadFile(filepath.Join("/sys/class/power_supply", e.Name(), "online"))
		if err == nil && strings.TrimSpace(string(raw)) == "1" {
			return true
		}
	}
	return !sawAC
}

func countAutostartEntries() int {
	count := 0
	dirs := []string{"/etc/xdg/autostart"}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "autostart"))
	}
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if strings.HasSuffix(e.Name(), ".desktop") {
				count++
			}
		}
	}
	return count
}

var bootTimeRe = regexp.MustCompile(`=\s*([0-9.]+)s\s*$`)

// readBootSeconds asks systemd-analyze for the boot duration. Non-systemd
// hosts report 0.
func readBootSeconds() float64 {
	out, err := RunTool("systemd-analyze", "time")
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "Startup finished") {
			continue
		}
		if m := bootTimeRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return v
			}
		}
	}
	return 0
}
