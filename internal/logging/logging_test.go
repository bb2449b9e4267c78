package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pterm/pterm"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected pterm.LogLevel
		wantErr  bool
	}{
		{"trace", pterm.LogLevelTrace, false},
		{"debug", pterm.LogLevelDebug, false},
		{"info", pterm.LogLevelInfo, false},
		{"", pterm.LogLevelInfo, false},
		{"warn", pterm.LogLevelWarn, false},
		{"error", pterm.LogLevelError, false},
		{"off", pterm.LogLevelDisabled, false},
		{"loud", pterm.LogLevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNewWriter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(pterm.LogLevelInfo, &buf)

	l.Debug("hidden")
	l.Info("step entered", l.Args("step", "listen"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message written at info level: %s", out)
	}
	if !strings.Contains(out, "step entered") || !strings.Contains(out, "listen") {
		t.Errorf("info message missing from output: %s", out)
	}
}

func TestNewCreatesLogFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	l, err := New("info", dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	l.Info("ready")

	if _, err := os.Stat(filepath.Join(dir, FileName)); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func TestOrDiscard(t *testing.T) {
	if OrDiscard(nil) == nil {
		t.Fatal("OrDiscard(nil) = nil")
	}
	l := Discard()
	if OrDiscard(l) != l {
		t.Error("OrDiscard did not return the given logger")
	}
}
