package engine

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/opsroot/healthmon/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS samples (
	ts INTEGER NOT NULL,
	cpu_percent REAL,
	dpc_percent REAL,
	interrupt_percent REAL,
	context_switches_per_sec REAL,
	processor_queue_length REAL,
	memory_used_percent REAL,
	committed_bytes INTEGER,
	page_faults_per_sec REAL,
	pages_input_per_sec REAL,
	disk_queue_length REAL,
	disk_read_latency_ms REAL,
	disk_write_latency_ms REAL,
	storage_error_count INTEGER,
	gpu_util_percent REAL,
	gpu_memory_used_percent REAL,
	dns_latency_ms REAL,
	memory_pressure_index REAL,
	system_latency_score REAL,
	hanging_count INTEGER
);
CREATE TABLE IF NOT EXISTS events (
	ts INTEGER NOT NULL,
	type TEXT NOT NULL,
	severity TEXT NOT NULL,
	description TEXT,
	tip TEXT
);
CREATE INDEX IF NOT EXISTS idx_samples_ts ON samples(ts);
`

// Recorder persists one row per tick to a sqlite database so a session can
// be inspected after the fact. Optional: the engine runs fine without one.
type Recorder struct {
	db *sql.DB
}

// OpenRecorder opens (creating if needed) the session database.
func OpenRecorder(path string) (*Recorder, error) {
	if path == "" {
		return nil, fmt.Errorf("recorder: empty database path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("recorder: create dir: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("recorder: open: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("recorder: init schema: %w", err)
	}
	return &Recorder{db: db}, nil
}

// Store writes one tick's scalars.
func (r *Recorder) Store(s *model.Sample) error {
	_, err := r.db.Exec(`INSERT INTO samples (
		ts, cpu_percent, dpc_percent, interrupt_percent,
		context_switches_per_sec, processor_queue_length,
		memory_used_percent, committed_bytes, page_faults_per_sec,
		pages_input_per_sec, disk_queue_length, disk_read_latency_ms,
		disk_write_latency_ms, storage_error_count, gpu_util_percent,
		gpu_memory_used_percent, dns_latency_ms, memory_pressure_index,
		system_latency_score, hanging_count
	) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		s.Timestamp.Unix(), s.CPUPercent, s.DPCPercent, s.InterruptPercent,
		s.ContextSwitchesPerSec, s.ProcessorQueueLength,
		s.MemoryUsedPercent, int64(s.CommittedBytes), s.PageFaultsPerSec,
		s.PagesInputPerSec, s.DiskQueueLength, s.DiskReadLatencyMs,
		s.DiskWriteLatencyMs, s.StorageErrorCount, s.GPUUtilPercent,
		s.GPUMemoryUsedPercent, s.DNSLatencyMs, s.MemoryPressureIndex,
		s.SystemLatencyScore, len(s.HangingProcs))
	return err
}

// StoreEvents appends the final event log, normally at session end.
func (r *Recorder) StoreEvents(events []model.MonitorEvent) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO events (ts, type, severity, description, tip) VALUES (?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, ev := range events {
		if _, err := stmt.Exec(ev.Timestamp.Unix(), ev.Type, ev.Severity.String(), ev.Description(), ev.Tip); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Close releases the database.
func (r *Recorder) Close() error {
	return r.db.Close()
}
