package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewJSONIncludesService(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "api", "info", "json")
	logger.Debug("hidden")
	logger.Info("generation_fallback", "content_type", "concept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one record, got %d: %q", len(lines), buf.String())
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record["service"] != "api" || record["msg"] != "generation_fallback" || record["content_type"] != "concept" {
		t.Fatalf("unexpected record: %v", record)
	}
}

func TestNewTextFormat(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "worker", "debug", "text").Debug("job_handled")
	if !strings.Contains(buf.String(), "msg=job_handled") || !strings.Contains(buf.String(), "service=worker") {
		t.Fatalf("unexpected text output %q", buf.String())
	}
}
