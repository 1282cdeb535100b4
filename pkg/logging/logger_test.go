package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func readEvents(t *testing.T, path string) []Event {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("decode line %q: %v", scanner.Text(), err)
		}
		events = append(events, ev)
	}
	return events
}

func TestLoggerWritesJSONL(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer logger.Close()

	logger.Info(CategorySession, "session_created", "session up", map[string]any{"instance_id": "s1"})
	logger.Error(CategoryNetwork, "command_failed", "remote rejected", nil)

	app := readEvents(t, filepath.Join(dir, "veil.jsonl"))
	if len(app) != 2 {
		t.Fatalf("app events = %d, want 2", len(app))
	}
	if app[0].Category != CategorySession || app[0].EventType != "session_created" {
		t.Errorf("event = %+v", app[0])
	}
	if app[0].Timestamp.IsZero() {
		t.Error("timestamp not stamped")
	}

	errs := readEvents(t, filepath.Join(dir, "errors.jsonl"))
	if len(errs) != 1 {
		t.Fatalf("error events = %d, want 1", len(errs))
	}
	if errs[0].EventType != "command_failed" {
		t.Errorf("error event = %+v", errs[0])
	}
}

func TestLoggerMinLevel(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer logger.Close()

	logger.Debug(CategoryTool, "noise", "dropped by default", nil)
	logger.SetMinLevel(LevelDebug)
	logger.Debug(CategoryTool, "kept", "visible now", nil)

	events := readEvents(t, filepath.Join(dir, "veil.jsonl"))
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].EventType != "kept" {
		t.Errorf("event = %+v", events[0])
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	if err := logger.Info(CategoryAPI, "noop", "", nil); err != nil {
		t.Errorf("nil Info: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}
