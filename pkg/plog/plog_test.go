package plog

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSetOutputCapturesAllLevels(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(slog.LevelDebug)
	defer SetLevel(slog.LevelInfo)

	Debug("debug message", "k", "v")
	Notice("notice message")
	Info("info message")
	Warn("warn message")
	Error("error message")

	out := buf.String()
	for _, want := range []string{"debug message", "notice message", "info message", "warn message", "error message"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestNoticeLevelName(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)

	Notice("COPY", "path", "a.txt")

	if !strings.Contains(buf.String(), "level=NOTICE") {
		t.Errorf("expected notice records to use the NOTICE level name, got:\n%s", buf.String())
	}
}

func TestSetLevelFiltersRecords(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(slog.LevelWarn)
	defer SetLevel(slog.LevelInfo)

	Info("hidden info")
	Warn("visible warning")

	out := buf.String()
	if strings.Contains(out, "hidden info") {
		t.Errorf("info record should have been filtered, got:\n%s", out)
	}
	if !strings.Contains(out, "visible warning") {
		t.Errorf("warn record should have been emitted, got:\n%s", out)
	}
}

func TestLevelFromString(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"notice", LevelNotice},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, c := range cases {
		if got := LevelFromString(c.in); got != c.want {
			t.Errorf("LevelFromString(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
