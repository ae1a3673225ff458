package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestNewWritesDailyFile(t *testing.T) {
	prev := zap.L()
	defer zap.ReplaceGlobals(prev)

	root := t.TempDir()
	log, err := New(root, Options{Level: "debug"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Debugw("hello", "k", "v")
	_ = log.Sync()

	path := filepath.Join(root, "logs", time.Now().Format("2006-01-02")+".log")
	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(body), `"msg":"hello"`) || !strings.Contains(string(body), `"level":"debug"`) {
		t.Errorf("log body = %s", body)
	}
}

func TestBadLevelFallsBackToInfo(t *testing.T) {
	prev := zap.L()
	defer zap.ReplaceGlobals(prev)

	log, err := New(t.TempDir(), Options{Level: "chatty"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if log.Desugar().Core().Enabled(zap.DebugLevel) {
		t.Error("debug enabled for an unknown level")
	}
}
