package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/opsroot/healthmon/config"
	"github.com/opsroot/healthmon/engine"
	"github.com/opsroot/healthmon/logger"
	"github.com/opsroot/healthmon/model"
	"github.com/opsroot/healthmon/ui"
)

// Version is set at build time via ldflags.
var Version = "0.3.0"

// Options holds the CLI configuration after flags and the config file
// are merged.
type Options struct {
	Interval time.Duration
	Duration time.Duration
	JSONMode bool
	Watch    bool
	Count    int
	Record   string
	Events   string
	DataDir  string
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `healthmon v%s — Host health monitor with freeze root-cause analysis

Usage:
  healthmon [OPTIONS] [INTERVAL]

Modes:
  (default)         Interactive dashboard (fullscreen)
  -watch            Plain terminal output with auto-refresh
  -json             Single JSON snapshot to stdout, then exit
  -version          Print version and exit

Options:
  -interval N       Sampling interval in seconds (default: 3)
  -duration N       Stop after N seconds and print a session report (watch mode)
  -count N          Number of iterations for -watch (0 = infinite, default: 0)
  -record FILE      Record every sample to a SQLite database at FILE
  -events FILE      Append resolved and active events to a JSON-lines file on exit
  -datadir PATH     Data directory (default: user config dir)
  -debug            Debug logging
  -verbose          Verbose logging

Positional:
  INTERVAL          First positional arg sets interval: healthmon 5 = healthmon -interval 5

Examples:
  healthmon                          Interactive dashboard, 3s refresh
  healthmon 1                        Interactive dashboard, 1s refresh
  healthmon -watch                   Plain output, refresh until interrupted
  healthmon -watch -duration 60      One minute of sampling, then a report
  healthmon -json | jq '.score'
  healthmon -record /var/lib/healthmon/session.db
`, Version)
}

// Run parses flags, merges the config file, and starts the selected mode.
func Run() error {
	fileCfg, err := config.Load()
	if err != nil {
		return err
	}

	var opts Options
	var intervalSec, durationSec int
	var showVersion, debug, verbose bool

	flag.IntVar(&intervalSec, "interval", fileCfg.IntervalSec, "Sampling interval in seconds")
	flag.IntVar(&durationSec, "duration", 0, "Stop after N seconds (0 = run until interrupted)")
	flag.BoolVar(&opts.JSONMode, "json", false, "Output a single JSON snapshot and exit")
	flag.BoolVar(&opts.Watch, "watch", false, "Plain terminal output (no fullscreen dashboard)")
	flag.IntVar(&opts.Count, "count", 0, "Number of iterations for -watch (0=infinite)")
	flag.StringVar(&opts.Record, "record", fileCfg.RecordDB, "Record samples to a SQLite database")
	flag.StringVar(&opts.Events, "events", "", "Append events to a JSON-lines file on exit")
	flag.StringVar(&opts.DataDir, "datadir", fileCfg.DataDir, "Data directory")
	flag.BoolVar(&debug, "debug", fileCfg.Debug, "Debug logging")
	flag.BoolVar(&verbose, "verbose", fileCfg.Verbose, "Verbose logging")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")

	flag.Usage = printUsage
	flag.Parse()

	if showVersion {
		fmt.Printf("healthmon v%s\n", Version)
		return nil
	}

	// Support positional arg for interval: `healthmon 5` = `healthmon -interval 5`
	if args := flag.Args(); len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			intervalSec = n
		}
	}
	if intervalSec <= 0 {
		intervalSec = config.Default().IntervalSec
	}
	opts.Interval = time.Duration(intervalSec) * time.Second
	opts.Duration = time.Duration(durationSec) * time.Second

	dashboard := !opts.JSONMode && !opts.Watch && durationSec == 0 && opts.Count == 0
	if dashboard {
		// The dashboard owns the terminal; stderr logging would corrupt
		// the alternate screen, so route logs to a file instead.
		logger.InitWriter(dashboardLogSink(opts.DataDir), debug, verbose)
	} else {
		logger.Init(debug, verbose)
	}

	if os.Geteuid() != 0 {
		fmt.Fprintf(os.Stderr, "Warning: running without root — some metrics (process IO, kernel stacks) may be unavailable\n")
	}

	eng := engine.New(engine.Config{
		HistoryCap:    fileCfg.HistoryCap,
		EventCap:      fileCfg.EventCap,
		DeepHangAfter: time.Duration(fileCfg.DeepHangAfterSec) * time.Second,
		DumpHangAfter: time.Duration(fileCfg.DumpHangAfterSec) * time.Second,
		DeepCooldown:  time.Duration(fileCfg.DeepCooldownSec) * time.Second,
		DumpCooldown:  time.Duration(fileCfg.DumpCooldownSec) * time.Second,
	})

	if opts.Record != "" {
		rec, err := engine.OpenRecorder(resolvePath(opts.Record, opts.DataDir))
		if err != nil {
			return fmt.Errorf("open recorder: %w", err)
		}
		defer rec.Close()
		eng.SetRecorder(rec)
	}

	if opts.Events != "" {
		defer func() {
			path := resolvePath(opts.Events, opts.DataDir)
			if err := engine.WriteEventsJSONL(path, eng.Events()); err != nil {
				logger.Error().Err(err).Str("path", path).Msg("event export failed")
			}
		}()
	}

	if opts.JSONMode {
		return runJSON(eng)
	}
	if opts.Watch || opts.Duration > 0 || opts.Count > 0 {
		return runWatch(eng, opts)
	}
	return ui.Run(eng, opts.Interval)
}

// dashboardLogSink opens healthmon.log under the data directory, falling
// back to discarding logs when the directory cannot be written.
func dashboardLogSink(dataDir string) io.Writer {
	if dataDir == "" {
		return io.Discard
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return io.Discard
	}
	f, err := os.OpenFile(filepath.Join(dataDir, "healthmon.log"),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return io.Discard
	}
	return f
}

// resolvePath keeps absolute paths as given and places relative ones
// under the data directory.
func resolvePath(path, dataDir string) string {
	if filepath.IsAbs(path) || dataDir == "" {
		return path
	}
	return filepath.Join(dataDir, path)
}

// runJSON outputs a single sample with its assessments as JSON and exits.
func runJSON(eng *engine.Engine) error {
	// Two ticks so rate-based signals have a delta to work from.
	eng.Tick()
	time.Sleep(time.Second)
	sample, assessments := eng.Tick()

	data := map[string]interface{}{
		"timestamp":   time.Now().Format(time.RFC3339),
		"sample":      sample,
		"assessments": assessments,
		"score":       engine.OverallScore(assessments),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// runWatch prints a status line per tick and a session report at exit.
func runWatch(eng *engine.Engine, opts Options) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var iterations int
	eng.Run(ctx, opts.Interval, opts.Duration, func(s *model.Sample, assessments []model.HealthAssessment) bool {
		printStatusLine(s, assessments)
		iterations++
		return opts.Count == 0 || iterations < opts.Count
	})

	fmt.Println()
	fmt.Print(engine.RenderReport(eng.Report()))
	return nil
}

func printStatusLine(s *model.Sample, assessments []model.HealthAssessment) {
	worst := engine.OverallScore(assessments)
	fmt.Printf("%s  cpu %5.1f%%  mem %5.1f%%  pressure %5.1f  latency %5.1f  score %3.0f (%s)\n",
		s.Timestamp.Format("15:04:05"),
		s.CPUPercent, s.MemoryUsedPercent,
		s.MemoryPressureIndex, s.SystemLatencyScore,
		worst.Score, worst.Domain)

	if s.Freeze != nil {
		fmt.Printf("          freeze: %s — %s\n", s.Freeze.Cause, s.Freeze.Description)
	}
	if s.DeepFreeze != nil {
		fmt.Printf("          deep: %s (confidence %.2f)\n", s.DeepFreeze.Category, s.DeepFreeze.Confidence)
	}
	for _, a := range assessments {
		for _, ev := range a.Events {
			fmt.Printf("          [%s] %s\n", ev.Type, ev.Description())
		}
	}
}
