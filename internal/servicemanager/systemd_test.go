package servicemanager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerateUnitFile(t *testing.T) {
	unit, err := generateUnitFile(ServiceSpec{
		BinaryPath:   "/usr/local/bin/compage",
		ConfigPath:   "/home/gopher/my components.ini",
		SettingsPath: "/home/gopher/compage.yaml",
	})
	if err != nil {
		t.Fatalf("generateUnitFile() error = %v", err)
	}

	expected := []string{
		"[Unit]",
		"[Service]",
		"[Install]",
		"Description=compage component host (my components.ini)",
		"Type=notify",
		"Environment=COMPAGE_SYSTEMD_NOTIFY=true",
		`ExecStart=/usr/local/bin/compage --settings /home/gopher/compage.yaml "/home/gopher/my components.ini"`,
		"ExecReload=/bin/kill -HUP $MAINPID",
		"Restart=on-failure",
		"WantedBy=default.target",
	}

	for _, line := range expected {
		if !strings.Contains(unit, line) {
			t.Errorf("generateUnitFile() missing %q\n%s", line, unit)
		}
	}
}

func TestSystemdQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/usr/bin/compage", "/usr/bin/compage"},
		{"a b", `"a b"`},
		{`say "hi"`, `"say \"hi\""`},
		{"", `""`},
	}

	for _, tt := range tests {
		if got := systemdQuote(tt.in); got != tt.want {
			t.Errorf("systemdQuote(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetUnitPath(t *testing.T) {
	path, err := getUnitPath()
	if err != nil {
		t.Fatalf("getUnitPath() error = %v", err)
	}

	if !strings.Contains(path, filepath.Join(".config", "systemd", "user")) {
		t.Errorf("getUnitPath() = %v, want path containing .config/systemd/user", path)
	}
	if !strings.HasSuffix(path, systemdServiceName) {
		t.Errorf("getUnitPath() = %v, want suffix %s", path, systemdServiceName)
	}
}

func TestSystemdManager_Install(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	configPath := writeConfig(t)

	mock := newMockExecutor()
	manager := newSystemdManager(mock)

	if err := manager.Install(context.Background(), ServiceSpec{ConfigPath: configPath}); err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	unitPath := filepath.Join(tmpDir, ".config", "systemd", "user", systemdServiceName)
	content, err := os.ReadFile(unitPath)
	if err != nil {
		t.Fatalf("Install() did not create unit file: %v", err)
	}
	if !strings.Contains(string(content), configPath) {
		t.Errorf("unit file should run %s:\n%s", configPath, content)
	}

	want := []string{
		"systemctl --user daemon-reload",
		"systemctl --user enable " + systemdServiceName,
	}
	if strings.Join(mock.commands, "|") != strings.Join(want, "|") {
		t.Errorf("Install() commands = %v, want %v", mock.commands, want)
	}
}

func TestSystemdManager_Install_EnableError(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := writeConfig(t)

	mock := newMockExecutor()
	mock.errors["systemctl --user enable "+systemdServiceName] = errors.New("enable failed")

	err := newSystemdManager(mock).Install(context.Background(), ServiceSpec{ConfigPath: configPath})
	if err == nil || !strings.Contains(err.Error(), "failed to enable service") {
		t.Errorf("Install() error = %v, want enable failure", err)
	}
}

func TestSystemdManager_Install_MissingConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	mock := newMockExecutor()

	err := newSystemdManager(mock).Install(context.Background(), ServiceSpec{ConfigPath: "/nonexistent/components.ini"})
	if err == nil {
		t.Fatal("Install() should fail for a missing config file")
	}
	if len(mock.commands) != 0 {
		t.Errorf("no commands should run, got %v", mock.commands)
	}
}

func TestSystemdManager_Uninstall(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	unitPath := filepath.Join(tmpDir, ".config", "systemd", "user", systemdServiceName)
	if err := writeServiceFile(unitPath, "[Unit]\n"); err != nil {
		t.Fatal(err)
	}

	mock := newMockExecutor()
	mock.errors["systemctl --user stop "+systemdServiceName] = errors.New("not running")

	if err := newSystemdManager(mock).Uninstall(context.Background()); err != nil {
		t.Fatalf("Uninstall() error = %v", err)
	}
	if _, err := os.Stat(unitPath); !os.IsNotExist(err) {
		t.Error("Uninstall() did not remove unit file")
	}
	if len(mock.commands) != 3 {
		t.Errorf("Uninstall() ran %d commands, want 3: %v", len(mock.commands), mock.commands)
	}
}

func TestSystemdManager_StartStopRestart(t *testing.T) {
	mock := newMockExecutor()
	manager := newSystemdManager(mock)
	ctx := context.Background()

	if err := manager.Start(ctx); err != nil {
		t.Errorf("Start() error = %v", err)
	}
	if err := manager.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := manager.Restart(ctx); err != nil {
		t.Errorf("Restart() error = %v", err)
	}

	want := []string{
		"systemctl --user start " + systemdServiceName,
		"systemctl --user stop " + systemdServiceName,
		"systemctl --user restart " + systemdServiceName,
	}
	if strings.Join(mock.commands, "|") != strings.Join(want, "|") {
		t.Errorf("commands = %v, want %v", mock.commands, want)
	}

	mock.errors["systemctl --user start "+systemdServiceName] = errors.New("boom")
	if err := manager.Start(ctx); err == nil {
		t.Error("Start() should surface systemctl errors")
	}
}

func TestParseSystemctlOutput(t *testing.T) {
	tests := []struct {
		name        string
		output      string
		wantState   ServiceState
		wantPID     int
		wantRunning bool
	}{
		{
			name:        "active and enabled",
			output:      "ActiveState=active\nMainPID=4242\nUnitFileState=enabled\n",
			wantState:   ServiceStateEnabled,
			wantPID:     4242,
			wantRunning: true,
		},
		{
			name:      "inactive and disabled",
			output:    "ActiveState=inactive\nMainPID=0\nUnitFileState=disabled\n",
			wantState: ServiceStateDisabled,
		},
		{
			name:        "reloading",
			output:      "ActiveState=reloading\nMainPID=7\nUnitFileState=enabled-runtime",
			wantState:   ServiceStateEnabled,
			wantPID:     7,
			wantRunning: true,
		},
		{
			name:      "garbage",
			output:    "not a property line",
			wantState: ServiceStateDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, pid, running := parseSystemctlOutput(tt.output)
			if state != tt.wantState || pid != tt.wantPID || running != tt.wantRunning {
				t.Errorf("parseSystemctlOutput() = (%v, %d, %v), want (%v, %d, %v)",
					state, pid, running, tt.wantState, tt.wantPID, tt.wantRunning)
			}
		})
	}
}

func TestSystemdManager_Status(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	mock := newMockExecutor()
	manager := newSystemdManager(mock)
	ctx := context.Background()

	status, err := manager.Status(ctx)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if status.State != ServiceStateNotInstalled {
		t.Errorf("State = %v, want not-installed", status.State)
	}

	unitPath := filepath.Join(tmpDir, ".config", "systemd", "user", systemdServiceName)
	if err := writeServiceFile(unitPath, "[Unit]\n"); err != nil {
		t.Fatal(err)
	}
	mock.outputs["systemctl --user show "+systemdServiceName+" --property=ActiveState,MainPID,UnitFileState"] =
		"ActiveState=active\nMainPID=99\nUnitFileState=enabled\n"

	status, err = manager.Status(ctx)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if !status.Running || status.PID != 99 || status.State != ServiceStateEnabled {
		t.Errorf("Status() = %+v", status)
	}
}
