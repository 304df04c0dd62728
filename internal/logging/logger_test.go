package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLoggerWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, "json", "info")

	logger.Info("agent_started", "agent", "alpha", "pid", 1234)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if record["msg"] != "agent_started" {
		t.Errorf("msg = %v, want agent_started", record["msg"])
	}
	if record["agent"] != "alpha" {
		t.Errorf("agent = %v, want alpha", record["agent"])
	}
}

func TestNewLoggerWithWriterLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, "text", "warn")

	logger.Info("should_not_appear")
	logger.Warn("should_appear")

	out := buf.String()
	if strings.Contains(out, "should_not_appear") {
		t.Error("info record logged at warn level")
	}
	if !strings.Contains(out, "should_appear") {
		t.Error("warn record missing")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name   string
		output string
		n      int
		want   string
	}{
		{
			name:   "empty",
			output: "",
			n:      5,
			want:   "",
		},
		{
			name:   "fewer lines than limit",
			output: "one\ntwo\n",
			n:      5,
			want:   "one\ntwo",
		},
		{
			name:   "tail only",
			output: "one\ntwo\nthree\nfour\n",
			n:      2,
			want:   "three\nfour",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Excerpt(tt.output, tt.n); got != tt.want {
				t.Errorf("Excerpt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExcerptTruncatesLongLines(t *testing.T) {
	long := strings.Repeat("x", MaxLineLength+100)
	got := Excerpt(long, 1)
	if !strings.HasSuffix(got, "...(truncated)") {
		t.Error("long line not truncated")
	}
	if len(got) > MaxLineLength+len("...(truncated)") {
		t.Errorf("excerpt length = %d, exceeds cap", len(got))
	}
}
