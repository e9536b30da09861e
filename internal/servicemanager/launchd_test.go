package servicemanager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGeneratePlist(t *testing.T) {
	plist, err := generatePlist(ServiceSpec{
		BinaryPath: "/usr/local/bin/compage",
		ConfigPath: "/Users/gopher/R&D/components.ini",
	})
	if err != nil {
		t.Fatalf("generatePlist() error = %v", err)
	}

	expected := []string{
		"<key>Label</key>",
		"<string>" + launchdServiceLabel + "</string>",
		"<string>/usr/local/bin/compage</string>",
		"<string>/Users/gopher/R&amp;D/components.ini</string>",
		"<key>WorkingDirectory</key>",
		"<string>/Users/gopher/R&amp;D</string>",
		"<key>RunAtLoad</key>",
		"<key>KeepAlive</key>",
	}
	for _, s := range expected {
		if !strings.Contains(plist, s) {
			t.Errorf("generatePlist() missing %q\n%s", s, plist)
		}
	}
	if strings.Contains(plist, "--settings") {
		t.Error("plist should not pass --settings without a settings path")
	}
}

func TestGetPlistPath(t *testing.T) {
	path, err := getPlistPath()
	if err != nil {
		t.Fatalf("getPlistPath() error = %v", err)
	}
	if !strings.HasSuffix(path, filepath.Join("Library", "LaunchAgents", launchdPlistName)) {
		t.Errorf("getPlistPath() = %v", path)
	}
}

func TestLaunchdManager_Install(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	configPath := writeConfig(t)

	mock := newMockExecutor()
	if err := newLaunchdManager(mock).Install(context.Background(), ServiceSpec{ConfigPath: configPath}); err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	plistPath := filepath.Join(tmpDir, "Library", "LaunchAgents", launchdPlistName)
	if _, err := os.Stat(plistPath); err != nil {
		t.Fatalf("Install() did not create plist file: %v", err)
	}
	if len(mock.commands) != 1 || mock.commands[0] != "launchctl load -w "+plistPath {
		t.Errorf("Install() commands = %v", mock.commands)
	}
}

func TestLaunchdManager_Install_LaunchctlError(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	configPath := writeConfig(t)

	mock := newMockExecutor()
	plistPath := filepath.Join(tmpDir, "Library", "LaunchAgents", launchdPlistName)
	mock.errors["launchctl load -w "+plistPath] = errors.New("launchctl failed")

	err := newLaunchdManager(mock).Install(context.Background(), ServiceSpec{ConfigPath: configPath})
	if err == nil || !strings.Contains(err.Error(), "launchctl") {
		t.Errorf("Install() error = %v, want launchctl failure", err)
	}
}

func TestLaunchdManager_Uninstall(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	plistPath := filepath.Join(tmpDir, "Library", "LaunchAgents", launchdPlistName)
	if err := writeServiceFile(plistPath, "<plist/>"); err != nil {
		t.Fatal(err)
	}

	mock := newMockExecutor()
	if err := newLaunchdManager(mock).Uninstall(context.Background()); err != nil {
		t.Fatalf("Uninstall() error = %v", err)
	}
	if _, err := os.Stat(plistPath); !os.IsNotExist(err) {
		t.Error("Uninstall() did not remove plist file")
	}

	// Uninstalling twice is fine
	if err := newLaunchdManager(mock).Uninstall(context.Background()); err != nil {
		t.Errorf("second Uninstall() error = %v", err)
	}
}

func TestLaunchdManager_Restart(t *testing.T) {
	mock := newMockExecutor()
	mock.errors["launchctl stop "+launchdServiceLabel] = errors.New("not running")

	if err := newLaunchdManager(mock).Restart(context.Background()); err != nil {
		t.Fatalf("Restart() error = %v", err)
	}
	want := []string{"launchctl stop " + launchdServiceLabel, "launchctl start " + launchdServiceLabel}
	if strings.Join(mock.commands, "|") != strings.Join(want, "|") {
		t.Errorf("Restart() commands = %v, want %v", mock.commands, want)
	}
}

func TestParseLaunchctlOutput(t *testing.T) {
	tests := []struct {
		name        string
		output      string
		wantPID     int
		wantRunning bool
	}{
		{"dictionary", "{\n\t\"Label\" = \"com.leefowlercu.compage\";\n\t\"PID\" = 321;\n};", 321, true},
		{"tabular", "321\t0\tcom.leefowlercu.compage", 321, true},
		{"not running", "-\t0\tcom.leefowlercu.compage", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pid, running := parseLaunchctlOutput(tt.output)
			if pid != tt.wantPID || running != tt.wantRunning {
				t.Errorf("parseLaunchctlOutput() = (%d, %v), want (%d, %v)", pid, running, tt.wantPID, tt.wantRunning)
			}
		})
	}
}

func TestLaunchdManager_Status(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	mock := newMockExecutor()
	manager := newLaunchdManager(mock)
	ctx := context.Background()

	status, err := manager.Status(ctx)
	if err != nil || status.State != ServiceStateNotInstalled {
		t.Fatalf("Status() = %+v, %v; want not-installed", status, err)
	}

	plistPath := filepath.Join(tmpDir, "Library", "LaunchAgents", launchdPlistName)
	if err := writeServiceFile(plistPath, "<plist/>"); err != nil {
		t.Fatal(err)
	}

	mock.errors["launchctl list "+launchdServiceLabel] = errors.New("could not find service")
	status, err = manager.Status(ctx)
	if err != nil || status.State != ServiceStateDisabled {
		t.Errorf("Status() = %+v, %v; want disabled", status, err)
	}

	delete(mock.errors, "launchctl list "+launchdServiceLabel)
	mock.outputs["launchctl list "+launchdServiceLabel] = "\"PID\" = 55;"
	status, err = manager.Status(ctx)
	if err != nil || !status.Running || status.PID != 55 || status.State != ServiceStateEnabled {
		t.Errorf("Status() = %+v, %v; want running enabled", status, err)
	}
}
