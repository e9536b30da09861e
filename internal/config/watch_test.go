package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatch_DefaultsOnly(t *testing.T) {
	t.Setenv(envDirVar, t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	Reset()
	t.Cleanup(Reset)

	if err := Init(""); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}

	w, err := Watch(func(*Config) {})
	if err != nil {
		t.Fatalf("Watch() returned error: %v", err)
	}
	if w != nil {
		t.Error("Watch() should not watch when no settings file is loaded")
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() on nil watcher returned error: %v", err)
	}
}

func TestWatchPath_ReloadsOnWrite(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "compage.yaml")
	if err := os.WriteFile(configPath, []byte("log_level: info\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	Reset()
	t.Cleanup(Reset)
	if err := Init(configPath); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}

	reloaded := make(chan *Config, 4)
	w, err := WatchPath(configPath, 20*time.Millisecond, func(cfg *Config) { reloaded <- cfg })
	if err != nil {
		t.Fatalf("WatchPath() returned error: %v", err)
	}
	defer w.Stop()

	// Unrelated files in the same directory are ignored.
	if err := os.WriteFile(filepath.Join(tmpDir, "other.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(configPath, []byte("log_level: debug\n"), 0644); err != nil {
		t.Fatalf("failed to update config file: %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.LogLevel != "debug" {
			t.Errorf("reloaded LogLevel = %q, want debug", cfg.LogLevel)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("settings were not reloaded after write")
	}

	if got := Get().LogLevel; got != "debug" {
		t.Errorf("Get().LogLevel = %q, want debug", got)
	}
}

func TestWatchPath_InvalidChangeKeepsPrevious(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "compage.yaml")
	if err := os.WriteFile(configPath, []byte("shutdown_timeout: 4\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	Reset()
	t.Cleanup(Reset)
	if err := Init(configPath); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}

	called := make(chan struct{}, 1)
	w, err := WatchPath(configPath, 20*time.Millisecond, func(*Config) { called <- struct{}{} })
	if err != nil {
		t.Fatalf("WatchPath() returned error: %v", err)
	}

	if err := os.WriteFile(configPath, []byte("shutdown_timeout: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-called:
		t.Error("onChange should not run for an invalid file")
	case <-time.After(300 * time.Millisecond):
	}

	if err := w.Stop(); err != nil {
		t.Errorf("Stop() returned error: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() returned error: %v", err)
	}
	if got := Get().ShutdownTimeout; got != 4 {
		t.Errorf("Get().ShutdownTimeout = %d, want 4", got)
	}
}

func TestWatchPath_MissingDirectory(t *testing.T) {
	if _, err := WatchPath(filepath.Join(t.TempDir(), "missing", "compage.yaml"), time.Millisecond, nil); err == nil {
		t.Error("WatchPath() should fail for a missing directory")
	}
}
