package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LogLevelDebug},
		{"INFO", LogLevelInfo},
		{"warning", LogLevelWarn},
		{"error", LogLevelError},
		{"bogus", LogLevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LoggerConfig{Level: LogLevelWarn, Output: &buf})

	log.Debug("dropped")
	log.Info("dropped")
	log.Warn("kept")
	log.Error("kept too")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("output contains filtered messages:\n%s", out)
	}
	if !strings.Contains(out, "kept") || !strings.Contains(out, "kept too") {
		t.Errorf("output missing expected messages:\n%s", out)
	}
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LoggerConfig{Output: &buf}).WithComponent("session").WithField("id", 7)

	log.Info("hello %s", "world")

	out := buf.String()
	if !strings.Contains(out, "hello world") {
		t.Errorf("output missing formatted message:\n%s", out)
	}
	if !strings.Contains(out, "component: session") || !strings.Contains(out, "id: 7") {
		t.Errorf("output missing fields:\n%s", out)
	}
}

func TestLoggerDisable(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LoggerConfig{Output: &buf})
	log.Disable()
	log.Error("silent")
	if buf.Len() != 0 {
		t.Errorf("disabled logger wrote output: %q", buf.String())
	}

	log.Enable()
	log.Error("loud")
	if !strings.Contains(buf.String(), "loud") {
		t.Errorf("re-enabled logger wrote nothing")
	}
}
