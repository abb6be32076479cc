package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/samvad-hq/samvad-title-fetcher/internal/config"
)

func TestLoggerWritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	log := initWithWriter(&config.Config{AppName: "test-app", LogLevel: "info"}, &buf)
	t.Cleanup(func() { S = nil })

	log.InfoObj("request finished", "outcome", map[string]any{"mode": "fixture"})
	log.DebugObj("dropped at info level", "x", 1)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "request finished" || entry["app"] != "test-app" {
		t.Fatalf("unexpected entry %#v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("missing ts field")
	}
	outcome, ok := entry["outcome"].(map[string]any)
	if !ok || outcome["mode"] != "fixture" {
		t.Fatalf("unexpected outcome field %#v", entry["outcome"])
	}
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	if got := parseLevel("verbose"); got.String() != "info" {
		t.Fatalf("parseLevel(verbose) = %s", got)
	}
	if got := parseLevel("warning"); got.String() != "warn" {
		t.Fatalf("parseLevel(warning) = %s", got)
	}
}

func TestHelpersAreSafeBeforeInit(t *testing.T) {
	S = nil
	InfoObj("noop", "k", 1)
	if err := Close(); err != nil {
		t.Fatalf("Close before Init: %v", err)
	}
	Ensure(nil).ErrorObj("noop", "k", 1)
}
