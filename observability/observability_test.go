package observability

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNopLogger(t *testing.T) {
	var l Logger = NopLogger{}
	l = l.With(String("k", "v"))
	l.Debug("debug")
	l.Error("error", Error("err", errors.New("boom")))
	if _, ok := OrNop(nil).(NopLogger); !ok {
		t.Fatal("OrNop(nil) should return NopLogger")
	}
}

func TestSlogLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogLogger(&buf, slog.LevelInfo).With(String("image", "a.png"))
	l.Debug("hidden")
	l.Info("decoded", Int("rows", 8), Bool("inverted", false), Error("err", errors.New("boom")))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record written at info level: %q", out)
	}
	for _, want := range []string{"msg=decoded", "image=a.png", "rows=8", "inverted=false", "err=boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("ParseLevel(loud) should fail")
	}
}
