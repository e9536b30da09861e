package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewManager_BootstrapWritesText(t *testing.T) {
	var stderr bytes.Buffer
	mgr := newManager(&stderr)
	defer func() { _ = mgr.Close() }()

	mgr.Logger().Info("bootstrap test", "component", "heartbeat")

	out := stderr.String()
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("bootstrap mode should use text format, got: %s", out)
	}
	if !strings.Contains(out, "component=heartbeat") {
		t.Errorf("text format should have key=value, got: %s", out)
	}
}

func TestManager_Logger_Stable(t *testing.T) {
	mgr := NewManager()
	defer func() { _ = mgr.Close() }()

	logger := mgr.Logger()
	if err := mgr.Upgrade(filepath.Join(t.TempDir(), "compage.log"), slog.LevelInfo); err != nil {
		t.Fatalf("Upgrade() error = %v", err)
	}
	if logger != mgr.Logger() {
		t.Error("Manager.Logger() should return the same instance across Upgrade")
	}
}

func TestManager_Upgrade_FansOut(t *testing.T) {
	var stderr bytes.Buffer
	mgr := newManager(&stderr)
	defer func() { _ = mgr.Close() }()

	logFile := filepath.Join(t.TempDir(), "nested", "dirs", "compage.log")
	if err := mgr.Upgrade(logFile, slog.LevelInfo); err != nil {
		t.Fatalf("Upgrade() error = %v", err)
	}

	mgr.Logger().With("component", "greeter").Info("instance launched", "sid", "greeter", "id", 3)

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &entry); err != nil {
		t.Fatalf("log file should be valid JSON: %v\ncontent: %s", err, content)
	}
	if entry["msg"] != "instance launched" || entry["component"] != "greeter" || entry["sid"] != "greeter" {
		t.Errorf("unexpected log entry: %v", entry)
	}
	if id, ok := entry["id"].(float64); !ok || id != 3 {
		t.Errorf("expected id=3, got %v", entry["id"])
	}

	if !strings.Contains(stderr.String(), "instance launched") {
		t.Errorf("stderr should still receive records, got: %s", stderr.String())
	}
}

func TestManager_Upgrade_EmptyPathOnlySetsLevel(t *testing.T) {
	var stderr bytes.Buffer
	mgr := newManager(&stderr)
	defer func() { _ = mgr.Close() }()

	if err := mgr.Upgrade("", slog.LevelDebug); err != nil {
		t.Fatalf("Upgrade() error = %v", err)
	}
	if mgr.Level() != slog.LevelDebug {
		t.Errorf("Level() = %v, want debug", mgr.Level())
	}

	mgr.Logger().Debug("debug visible")
	if !strings.Contains(stderr.String(), "debug visible") {
		t.Errorf("debug record missing from stderr: %s", stderr.String())
	}
}

func TestManager_SetLevel(t *testing.T) {
	mgr := newManager(&bytes.Buffer{})
	defer func() { _ = mgr.Close() }()

	logFile := filepath.Join(t.TempDir(), "compage.log")
	if err := mgr.Upgrade(logFile, slog.LevelInfo); err != nil {
		t.Fatalf("Upgrade() error = %v", err)
	}

	mgr.Logger().Debug("debug message 1")
	mgr.SetLevel(slog.LevelDebug)
	mgr.Logger().Debug("debug message 2")

	content, _ := os.ReadFile(logFile)
	output := string(content)

	if strings.Contains(output, "debug message 1") {
		t.Error("debug message 1 should not appear at info level")
	}
	if !strings.Contains(output, "debug message 2") {
		t.Error("debug message 2 should appear after SetLevel(debug)")
	}
}

func TestManager_Rotate(t *testing.T) {
	mgr := newManager(&bytes.Buffer{})
	defer func() { _ = mgr.Close() }()

	dir := t.TempDir()
	logFile := filepath.Join(dir, "compage.log")
	if err := mgr.Upgrade(logFile, slog.LevelInfo); err != nil {
		t.Fatalf("Upgrade() error = %v", err)
	}

	mgr.Logger().Info("first file")
	if err := mgr.Rotate(); err != nil {
		t.Fatalf("Rotate() error = %v", err)
	}
	mgr.Logger().Info("second file")

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) < 2 {
		t.Errorf("expected a backup file after rotation, got %d entries", len(entries))
	}

	content, _ := os.ReadFile(logFile)
	if strings.Contains(string(content), "first file") || !strings.Contains(string(content), "second file") {
		t.Errorf("current log file should only hold records after rotation: %s", content)
	}
}

func TestManager_Close(t *testing.T) {
	mgr := NewManager()

	if err := mgr.Upgrade(filepath.Join(t.TempDir(), "compage.log"), slog.LevelInfo); err != nil {
		t.Fatalf("Upgrade() error = %v", err)
	}
	if err := mgr.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := mgr.Close(); err != nil {
		t.Errorf("Close() second call error = %v", err)
	}
	if err := mgr.Rotate(); err != nil {
		t.Errorf("Rotate() after Close error = %v", err)
	}
}

func TestManager_Upgrade_PathIsDirectory(t *testing.T) {
	mgr := NewManager()
	defer func() { _ = mgr.Close() }()

	if err := mgr.Upgrade(t.TempDir(), slog.LevelInfo); err == nil {
		t.Error("Upgrade() should error when path is a directory")
	}
}
