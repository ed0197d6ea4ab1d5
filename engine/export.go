package engine

import (
	"bufio"
	"encoding/json"
	"os"

	"github.com/opsroot/healthmon/model"
)

// WriteEventsJSONL appends events to a JSON-lines file.
func WriteEventsJSONL(path string, events []model.MonitorEvent) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	for _, ev := range events {
		if err := enc.Encode(ev); err != nil {
			return err
		}
	}
	return nil
}

// ReadEventsJSONL reads all events from a JSON-lines file. A missing file
// yields an empty list; malformed lines are skipped.
func ReadEventsJSONL(path string) ([]model.MonitorEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var events []model.MonitorEvent
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)
	for sc.Scan() {
		var ev model.MonitorEvent
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events, sc.Err()
}
