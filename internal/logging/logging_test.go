package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want Level
	}{
		{"DEBUG", DebugLevel},
		{"debug", DebugLevel},
		{" info ", InfoLevel},
		{"WARN", WarnLevel},
		{"WARNING", WarnLevel},
		{"error", ErrorLevel},
		{"FATAL", FatalLevel},
		{"bogus", InfoLevel},
		{"", InfoLevel},
	}

	for _, c := range cases {
		if got := ParseLevel(c.in); got != c.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestInitWritesToOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: DebugLevel, Output: &buf})
	defer Init(DefaultConfig())

	Info().Str("component", "test").Msg("hello")

	if !strings.Contains(buf.String(), `"hello"`) {
		t.Errorf("expected log output to contain message, got: %s", buf.String())
	}
	if !strings.Contains(buf.String(), `"component":"test"`) {
		t.Errorf("expected structured field in output, got: %s", buf.String())
	}
}

func TestInitLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: ErrorLevel, Output: &buf})
	defer Init(DefaultConfig())

	Info().Msg("should be filtered")
	if buf.Len() != 0 {
		t.Errorf("info message should be filtered at error level, got: %s", buf.String())
	}

	Error().Msg("should appear")
	if buf.Len() == 0 {
		t.Error("error message should be written at error level")
	}
}

func TestInitWithFile(t *testing.T) {
	var buf bytes.Buffer
	logPath := filepath.Join(t.TempDir(), "logs", "codeme.log")
	Init(Config{Level: InfoLevel, Output: &buf, File: logPath})
	defer Init(DefaultConfig())

	Info().Msg("to file too")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "to file too") {
		t.Errorf("log file missing message, got: %s", data)
	}
}
