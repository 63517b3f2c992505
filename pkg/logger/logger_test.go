package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWithLevelFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.log")
	InitWithLevel("debug", "file:"+path)
	defer InitWithLevel("", "")

	Debug("sink_check", "key", "value")
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sink: %v", err)
	}
	if !strings.Contains(string(b), "sink_check") {
		t.Fatalf("log record missing from sink: %q", b)
	}
}

func TestInitWithLevelFiltersBelowLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.log")
	InitWithLevel("warn", "file:"+path)
	defer InitWithLevel("", "")

	Info("too_quiet")
	Warn("loud_enough")
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sink: %v", err)
	}
	out := string(b)
	if strings.Contains(out, "too_quiet") {
		t.Fatal("info record emitted at warn level")
	}
	if !strings.Contains(out, "loud_enough") {
		t.Fatal("warn record missing")
	}
}
