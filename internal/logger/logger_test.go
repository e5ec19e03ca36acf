package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(line), &out); err != nil {
		t.Fatalf("decode %q: %v", line, err)
	}
	buf.Reset()
	return out
}

func TestContextFieldsReachOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(&Config{Level: "info", Format: "json", Output: &buf, ServiceName: "pokedex-test"})

	ctx := log.WithContext(context.Background())
	ctx = SetRunID(ctx, "run-42")
	ctx = SetGeneration(ctx, 3)
	ctx = SetRequestID(ctx, "req-1")

	if GetFieldString(ctx, FieldRunID) != "run-42" || GetRequestID(ctx) != "req-1" {
		t.Fatalf("context getters = %q, %q", GetFieldString(ctx, FieldRunID), GetRequestID(ctx))
	}

	FromContext(ctx).Info("hello")
	entry := decodeLine(t, &buf)
	if entry["message"] != "hello" || entry["service"] != "pokedex-test" {
		t.Errorf("entry = %v", entry)
	}
	if entry[FieldRunID] != "run-42" || entry[FieldGeneration] != float64(3) {
		t.Errorf("context fields missing: %v", entry)
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("timestamp field missing")
	}
}

func TestEntryMetrics(t *testing.T) {
	var buf bytes.Buffer
	log := New(&Config{Level: "info", Format: "json", Output: &buf, ServiceName: "pokedex-test"})
	ctx := log.WithContext(context.Background())

	start := time.Now().Add(-25 * time.Millisecond)
	With(Fields{FieldRunID: "r1"}).WithRunCounts(150, 1).WithStatus("FAILED").WithElapsed(start).Info(ctx, "run %s closed", "r1")
	entry := decodeLine(t, &buf)
	if entry["message"] != "run r1 closed" || entry[FieldRunID] != "r1" {
		t.Errorf("entry = %v", entry)
	}
	if entry[FieldStatus] != "FAILED" || entry[FieldCount] != float64(151) {
		t.Errorf("metric fields = %v", entry)
	}
	if entry[FieldSuccess] != float64(150) || entry[FieldFailed] != float64(1) {
		t.Errorf("run counts = %v/%v", entry[FieldSuccess], entry[FieldFailed])
	}
	if ms, ok := entry[FieldDurationMs].(float64); !ok || ms < 25 {
		t.Errorf("duration_ms = %v, want >= 25", entry[FieldDurationMs])
	}
}

func TestEntryDoesNotShareFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(&Config{Level: "debug", Format: "json", Output: &buf})
	ctx := log.WithContext(context.Background())

	fields := Fields{"page": 1}
	base := With(fields)
	base.WithCount(3).Debug(ctx, "first")
	fields["page"] = 2

	base.Warn(ctx, "second")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var second map[string]interface{}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if second["page"] != float64(1) {
		t.Errorf("page = %v, want 1", second["page"])
	}
	if _, ok := second[FieldCount]; ok {
		t.Errorf("count leaked into base entry: %v", second)
	}
	if second["level"] != "warning" {
		t.Errorf("level = %v", second["level"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&Config{Level: "warn", Format: "json", Output: &buf})
	log.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info written at warn level: %s", buf.String())
	}
	log.Warn("kept")
	if buf.Len() == 0 {
		t.Error("warn not written")
	}
}
