package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: JSONFormat, Level: WarnLevel, Output: &buf})

	logger.Debug("debug msg", nil)
	logger.Info("info msg", nil)
	logger.Warn("warn msg", nil)
	logger.Error("error msg", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %q", len(lines), buf.String())
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: JSONFormat, Level: InfoLevel, Output: &buf})

	logger.Info("ingested payload", Fields{"nodes": 12, "edges": 4})

	var e map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &e); err != nil {
		t.Fatalf("log line is not valid JSON: %v", err)
	}
	if e["message"] != "ingested payload" {
		t.Errorf("message = %v, want %q", e["message"], "ingested payload")
	}
	fields, ok := e["fields"].(map[string]interface{})
	if !ok {
		t.Fatalf("fields missing from entry: %v", e)
	}
	if fields["nodes"] != float64(12) {
		t.Errorf("fields.nodes = %v, want 12", fields["nodes"])
	}
}

func TestHumanFormatSortsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: HumanFormat, Level: InfoLevel, Output: &buf})

	logger.Info("poll complete", Fields{"zebra": 1, "alpha": 2})

	out := buf.String()
	if !strings.Contains(out, "alpha=2 zebra=1") {
		t.Errorf("expected sorted fields in output, got %q", out)
	}
}

func TestNopDiscards(t *testing.T) {
	logger := Nop()
	// Must not panic or write anywhere.
	logger.Error("dropped node", Fields{"id": ""})
}
