package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"info", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"ERROR", log.ErrorLevel},
		{"fatal", log.FatalLevel},
		{"", log.InfoLevel},
		{"bogus", log.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q): got %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewRespectsFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{Level: "warn", Format: "json"})

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "hidden") {
		t.Errorf("info message should be filtered at warn level: %s", out)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(out), &entry); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", out, err)
	}
	if entry["msg"] != "shown" {
		t.Errorf("msg: got %v, want shown", entry["msg"])
	}
	if entry["key"] != "value" {
		t.Errorf("key: got %v, want value", entry["key"])
	}
}

func TestRunLoggerWritesJSONL(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	rl, err := NewRunLogger(dir)
	if err != nil {
		t.Fatalf("NewRunLogger failed: %v", err)
	}
	rl.Logger().Info("request", "status", 201)
	if err := rl.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if filepath.Dir(rl.LogPath) != dir {
		t.Errorf("LogPath %q not in %q", rl.LogPath, dir)
	}
	data, err := os.ReadFile(rl.LogPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("log line is not JSON: %q: %v", data, err)
	}
	if entry["msg"] != "request" {
		t.Errorf("msg: got %v, want request", entry["msg"])
	}
}

func TestNewRunLoggerEmptyDir(t *testing.T) {
	if _, err := NewRunLogger(""); err == nil {
		t.Fatal("expected error for empty dir")
	}
}

func TestFindLatestLog(t *testing.T) {
	dir := t.TempDir()

	got, err := FindLatestLog(filepath.Join(dir, "absent"))
	if err != nil {
		t.Fatalf("FindLatestLog on missing dir: %v", err)
	}
	if got != "" {
		t.Errorf("missing dir: got %q, want empty", got)
	}

	older := filepath.Join(dir, "20240101-000000-1.jsonl")
	newer := filepath.Join(dir, "20240102-000000-2.jsonl")
	other := filepath.Join(dir, "notes.txt")
	for _, p := range []string{older, newer, other} {
		if err := os.WriteFile(p, []byte("{}\n"), 0644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	now := time.Now()
	if err := os.Chtimes(older, now.Add(-time.Hour), now.Add(-time.Hour)); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if err := os.Chtimes(other, now.Add(time.Hour), now.Add(time.Hour)); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	got, err = FindLatestLog(dir)
	if err != nil {
		t.Fatalf("FindLatestLog failed: %v", err)
	}
	if got != newer {
		t.Errorf("got %q, want %q", got, newer)
	}
}

func TestTailLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl")
	var content strings.Builder
	for i := 0; i < 500; i++ {
		content.WriteString(`{"msg":"line"}` + "\n")
	}
	if err := os.WriteFile(path, []byte(content.String()), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var all bytes.Buffer
	if err := TailLog(&all, path, 0); err != nil {
		t.Fatalf("TailLog failed: %v", err)
	}
	if all.String() != content.String() {
		t.Error("TailLog with n=0 should copy the whole file")
	}

	var tail bytes.Buffer
	if err := TailLog(&tail, path, 5); err != nil {
		t.Fatalf("TailLog failed: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(tail.String(), "\n"), "\n")
	if len(lines) == 0 || len(lines) >= 500 {
		t.Errorf("tail returned %d lines", len(lines))
	}
	for _, line := range lines {
		if line != `{"msg":"line"}` {
			t.Errorf("partial line in tail output: %q", line)
		}
	}
}

func TestFollowLogStops(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl")
	if err := os.WriteFile(path, []byte("first\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	done := make(chan struct{})
	close(done)

	var buf bytes.Buffer
	if err := FollowLog(&buf, path, 0, done); err != nil {
		t.Fatalf("FollowLog failed: %v", err)
	}
	if buf.String() != "first\n" {
		t.Errorf("got %q, want %q", buf.String(), "first\n")
	}
}
