package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"nonsense", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFileOutput(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "test.log")

	if err := InitWith(Options{Level: "debug", File: logFile}); err != nil {
		t.Fatalf("InitWith: %v", err)
	}
	defer Sync()

	Info("mesh build complete")
	Debug("resample pass")
	Sync()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "mesh build complete") {
		t.Error("log file missing info entry")
	}
	if !strings.Contains(string(data), "resample pass") {
		t.Error("log file missing debug entry")
	}
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "test.log")

	if err := InitWith(Options{Level: "warn", File: logFile}); err != nil {
		t.Fatalf("InitWith: %v", err)
	}
	defer Sync()

	Info("should be filtered")
	Warn("should appear")
	Sync()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(data), "should be filtered") {
		t.Error("info entry leaked through warn level")
	}
	if !strings.Contains(string(data), "should appear") {
		t.Error("warn entry missing")
	}
}
