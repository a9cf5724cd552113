package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"DEBUG", DebugLevel},
		{"debug", DebugLevel},
		{"info", InfoLevel},
		{"WARNING", WarnLevel},
		{"warn", WarnLevel},
		{"error", ErrorLevel},
		{"verbose", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDomainFields(t *testing.T) {
	if f := Host("d3"); f.Key != "host" || f.Value != "d3" {
		t.Errorf("Host() = %+v", f)
	}
	if f := ClassID(4); f.Key != "class_id" || f.Value != 4 {
		t.Errorf("ClassID() = %+v", f)
	}
	if f := Seed(42); f.Key != "seed" || f.Value != int64(42) {
		t.Errorf("Seed() = %+v", f)
	}
	if f := Duration("mission", 5*time.Minute); f.Value != "5m0s" {
		t.Errorf("Duration() = %+v", f)
	}
	if f := Error(errors.New("boom")); f.Value != "boom" {
		t.Errorf("Error() = %+v", f)
	}
	if f := Error(nil); f.Value != nil {
		t.Errorf("Error(nil) = %+v", f)
	}
}

func TestJSONLogger_LineFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)

	logger.Info("topology generated", Host("h1"), Count(3))

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to unmarshal log entry: %v", err)
	}
	if entry.Level != "INFO" {
		t.Errorf("Level = %v, want INFO", entry.Level)
	}
	if entry.Message != "topology generated" {
		t.Errorf("Message = %q", entry.Message)
	}
	if entry.Fields["host"] != "h1" {
		t.Errorf("host = %v, want h1", entry.Fields["host"])
	}
	if entry.Fields["count"] != float64(3) {
		t.Errorf("count = %v, want 3", entry.Fields["count"])
	}
}

func TestJSONLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 log entries, got %d", len(lines))
	}
}

func TestJSONLogger_WithSharesWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	child := logger.With(Component("topology"), RunID("run-1"))
	child.Info("placed", Host("s0"))
	logger.Info("parent")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 log entries, got %d", len(lines))
	}

	var entry LogEntry
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if entry.Component != "topology" || entry.RunID != "run-1" {
		t.Errorf("preset fields missing: component=%q run_id=%q", entry.Component, entry.RunID)
	}
	if entry.Fields["host"] != "s0" {
		t.Errorf("host = %v", entry.Fields["host"])
	}

	var parent LogEntry
	if err := json.Unmarshal([]byte(lines[1]), &parent); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if parent.Fields != nil {
		t.Errorf("parent should not inherit child fields: %v", parent.Fields)
	}
}

func TestTimedOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	op := StartTimer(logger, "queue generated", Component("traffic"))
	op.End(Count(10))

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if _, ok := entry.Fields["latency"]; !ok {
		t.Error("latency field missing")
	}
	if entry.Fields["count"] != float64(10) {
		t.Errorf("count = %v", entry.Fields["count"])
	}
}

func TestStartTimerNilLogger(t *testing.T) {
	op := StartTimer(nil, "noop")
	op.EndError(errors.New("ignored"))
}

func TestNopLogger(t *testing.T) {
	var l Logger = NewNopLogger()
	l.Info("nothing")
	if l.With(Host("x")) == nil {
		t.Error("With returned nil")
	}
	if l.GetLevel() != InfoLevel {
		t.Errorf("GetLevel = %v", l.GetLevel())
	}
}

func TestJSONLogger_RunIdentityLifted(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel).With(Component("queuegen"), Seed(1234))

	logger.Info("generated", RunID("run-7"), Count(3))

	var raw map[string]any
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if raw["component"] != "queuegen" || raw["run_id"] != "run-7" || raw["seed"] != float64(1234) {
		t.Fatalf("run identity not at top level: %v", raw)
	}
	fields, ok := raw["fields"].(map[string]any)
	if !ok {
		t.Fatalf("fields missing: %v", raw)
	}
	for _, key := range []string{"component", "run_id", "seed"} {
		if _, dup := fields[key]; dup {
			t.Errorf("%s repeated inside fields: %v", key, fields)
		}
	}
	if fields["count"] != float64(3) {
		t.Errorf("count = %v, want 3", fields["count"])
	}
}

func TestJSONLogger_NonStringComponentStaysInFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.Info("odd", Int("component", 5))

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if entry.Component != "" {
		t.Errorf("component = %q, want empty", entry.Component)
	}
	if entry.Fields["component"] != float64(5) {
		t.Errorf("fields = %v", entry.Fields)
	}
}
