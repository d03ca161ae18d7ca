package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/palisadehq/palisade/pkg/contextkeys"
)

func TestLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	logger.WithField("tenant_id", "tenant-a").Info("request completed")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["msg"] != "request completed" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["tenant_id"] != "tenant-a" {
		t.Errorf("tenant_id = %v", entry["tenant_id"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WarnLevel, &buf)

	logger.Info("below threshold")
	if buf.Len() != 0 {
		t.Error("info should be filtered at warn level")
	}

	logger.Warn("at threshold")
	if buf.Len() == 0 {
		t.Error("warn should be emitted at warn level")
	}
}

func TestLogger_WithFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(DebugLevel, &buf)

	logger.WithFields(map[string]interface{}{
		"a": 1,
		"b": "two",
	}).Debugf("formatted %d", 42)

	out := buf.String()
	for _, want := range []string{`"a":1`, `"b":"two"`, "formatted 42"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   DebugLevel,
		"info":    InfoLevel,
		"warn":    WarnLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		"bogus":   InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	ctx := WithLogger(context.Background(), logger)
	if GetLogger(ctx) != logger {
		t.Error("GetLogger should return the stored logger")
	}

	// FromContext annotates with the request ID when present
	ctx = contextkeys.WithRequestID(ctx, "req-123")
	FromContext(ctx).Info("hello")
	if !strings.Contains(buf.String(), "req-123") {
		t.Errorf("output missing request ID: %s", buf.String())
	}
}
