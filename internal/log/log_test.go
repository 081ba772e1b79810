package log

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Debug("ignored")
	l.Infof("ignored %d", 1)
	if l.With("k", "v") != nil {
		t.Error("With on nil logger should stay nil")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, slog.LevelWarn)
	l.Info("hidden")
	l.Warn("shown", slog.String("leg", "nose"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message written at warn level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "leg=nose") {
		t.Errorf("warn message missing: %q", out)
	}
}

func TestFileLogger(t *testing.T) {
	dir := t.TempDir()
	l, err := New("info", dir)
	if err != nil {
		t.Fatal(err)
	}
	l.Info("touchdown", slog.Int("leg", 1))

	if l.LogFile != filepath.Join(dir, "sixdof.slog") {
		t.Errorf("LogFile = %q", l.LogFile)
	}
	data, err := os.ReadFile(l.LogFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"msg":"touchdown"`) {
		t.Errorf("json log missing message: %s", data)
	}
}
