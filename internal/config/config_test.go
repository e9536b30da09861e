package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInit_NoFile_UsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(envDirVar, t.TempDir())
	t.Chdir(t.TempDir())
	Reset()
	t.Cleanup(Reset)

	if err := Init(""); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if ConfigFilePath() != "" {
		t.Errorf("ConfigFilePath() = %q, want empty", ConfigFilePath())
	}
	if got := Get().ShutdownTimeout; got != DefaultShutdownTimeout {
		t.Errorf("ShutdownTimeout = %d, want %d", got, DefaultShutdownTimeout)
	}
	if GetString("log_level") != DefaultLogLevel {
		t.Errorf("GetString(log_level) = %q", GetString("log_level"))
	}
}

func TestInit_ExplicitPath(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("http:\n  enabled: true\n  port: 8181\n"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if err := Init(path); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if ConfigFilePath() != path {
		t.Errorf("ConfigFilePath() = %q, want %q", ConfigFilePath(), path)
	}
	if !GetBool("http.enabled") || GetInt("http.port") != 8181 {
		t.Errorf("unexpected http settings: %+v", Get().HTTP)
	}
}

func TestInit_ExplicitPathMissing(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if err := Init(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Init() should fail when an explicit path does not exist")
	}
}

func TestInit_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(envDirVar, dir)
	Reset()
	t.Cleanup(Reset)

	if err := os.WriteFile(filepath.Join(dir, "compage.yaml"), []byte("log_level: [unclosed\n"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if err := Init(""); err == nil {
		t.Error("Init() should fail on invalid YAML")
	}
}

func TestGet_BeforeInitReturnsDefaults(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	want := NewDefaultConfig()
	if got := Get(); *got != want {
		t.Errorf("Get() = %+v, want %+v", *got, want)
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Get().LogLevel = "error"
	if Get().LogLevel != DefaultLogLevel {
		t.Error("mutating Get() result should not affect the active config")
	}
}

func TestReload_KeepsPreviousOnFailure(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	path := filepath.Join(t.TempDir(), "compage.yaml")
	if err := os.WriteFile(path, []byte("log_level: debug\n"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if err := Init(path); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("shutdown_timeout: -5\n"), 0600); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}
	if _, err := Reload(); err == nil {
		t.Fatal("Reload() should fail validation")
	}
	if Get().LogLevel != "debug" {
		t.Errorf("LogLevel = %q, previous config should be retained", Get().LogLevel)
	}

	if err := os.WriteFile(path, []byte("log_level: warn\n"), 0600); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}
	cfg, err := Reload()
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if cfg.LogLevel != "warn" || Get().LogLevel != "warn" {
		t.Errorf("reloaded LogLevel = %q, want warn", cfg.LogLevel)
	}
}

func TestGetPath_ExpandsHome(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	home := t.TempDir()
	t.Setenv("HOME", home)

	Set("log_file", "~/compage.log")
	if got := GetPath("log_file"); got != filepath.Join(home, "compage.log") {
		t.Errorf("GetPath() = %q", got)
	}
}

func TestEnsureConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if err := EnsureConfigDir(); err != nil {
		t.Fatalf("EnsureConfigDir() error = %v", err)
	}
	if info, err := os.Stat(filepath.Join(home, ".config", "compage")); err != nil || !info.IsDir() {
		t.Errorf("config dir not created: %v", err)
	}
}
