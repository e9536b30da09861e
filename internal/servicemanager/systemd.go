package servicemanager

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
)

const (
	// systemdServiceName is the systemd service name.
	systemdServiceName = "compage.service"
)

// systemdUnitTemplate is the template for the systemd unit file. The host
// reports readiness over sd_notify once its instances are launched.
const systemdUnitTemplate = `[Unit]
Description=compage component host ({{.ConfigName}})
After=network.target

[Service]
Type=notify
Environment=COMPAGE_SYSTEMD_NOTIFY=true
ExecStart={{.ExecStart}}
ExecReload=/bin/kill -HUP $MAINPID
Restart=on-failure
RestartSec=5
StartLimitBurst=5
StartLimitIntervalSec=60

[Install]
WantedBy=default.target
`

type systemdManager struct {
	executor CommandExecutor
}

func newSystemdManager(executor CommandExecutor) *systemdManager {
	return &systemdManager{
		executor: executor,
	}
}

// getUnitPath returns the path to the systemd user unit file.
func getUnitPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory; %w", err)
	}
	return filepath.Join(home, ".config", "systemd", "user", systemdServiceName), nil
}

// systemdQuote quotes a word for ExecStart when it needs it.
func systemdQuote(word string) string {
	if word != "" && !strings.ContainsAny(word, " \t\"'\\") {
		return word
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(word) + `"`
}

// generateUnitFile generates the systemd unit file content for a resolved spec.
func generateUnitFile(spec ServiceSpec) (string, error) {
	words := []string{systemdQuote(spec.BinaryPath)}
	for _, arg := range spec.Args() {
		words = append(words, systemdQuote(arg))
	}

	data := struct {
		ConfigName string
		ExecStart  string
	}{
		ConfigName: filepath.Base(spec.ConfigPath),
		ExecStart:  strings.Join(words, " "),
	}

	tmpl, err := template.New("unit").Parse(systemdUnitTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse unit template; %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute unit template; %w", err)
	}

	return buf.String(), nil
}

// Install writes the systemd unit file and enables auto-start.
func (m *systemdManager) Install(ctx context.Context, spec ServiceSpec) error {
	spec, err := spec.resolve()
	if err != nil {
		return err
	}

	unitPath, err := getUnitPath()
	if err != nil {
		return err
	}

	content, err := generateUnitFile(spec)
	if err != nil {
		return err
	}

	if err := writeServiceFile(unitPath, content); err != nil {
		return err
	}

	if _, err := m.executor.Run(ctx, "systemctl", "--user", "daemon-reload"); err != nil {
		return fmt.Errorf("failed to reload systemd daemon; %w", err)
	}

	if _, err := m.executor.Run(ctx, "systemctl", "--user", "enable", systemdServiceName); err != nil {
		return fmt.Errorf("failed to enable service; %w", err)
	}

	return nil
}

// Uninstall stops the service, disables auto-start, and removes the unit file.
func (m *systemdManager) Uninstall(ctx context.Context) error {
	unitPath, err := getUnitPath()
	if err != nil {
		return err
	}

	// Not running and not enabled are both fine here
	_, _ = m.executor.Run(ctx, "systemctl", "--user", "stop", systemdServiceName)
	_, _ = m.executor.Run(ctx, "systemctl", "--user", "disable", systemdServiceName)

	if err := os.Remove(unitPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove unit file; %w", err)
	}

	_, _ = m.executor.Run(ctx, "systemctl", "--user", "daemon-reload")

	return nil
}

// Start starts the host via systemctl.
func (m *systemdManager) Start(ctx context.Context) error {
	if _, err := m.executor.Run(ctx, "systemctl", "--user", "start", systemdServiceName); err != nil {
		return fmt.Errorf("failed to start service; %w", err)
	}
	return nil
}

// Stop stops the host via systemctl.
func (m *systemdManager) Stop(ctx context.Context) error {
	if _, err := m.executor.Run(ctx, "systemctl", "--user", "stop", systemdServiceName); err != nil {
		return fmt.Errorf("failed to stop service; %w", err)
	}
	return nil
}

// Restart restarts the host via systemctl.
func (m *systemdManager) Restart(ctx context.Context) error {
	if _, err := m.executor.Run(ctx, "systemctl", "--user", "restart", systemdServiceName); err != nil {
		return fmt.Errorf("failed to restart service; %w", err)
	}
	return nil
}

// Status returns the current service status.
func (m *systemdManager) Status(ctx context.Context) (ServiceStatus, error) {
	status := ServiceStatus{
		State: ServiceStateNotInstalled,
	}

	installed, err := m.IsInstalled()
	if err != nil {
		return status, err
	}
	if !installed {
		return status, nil
	}

	output, err := m.executor.Run(ctx, "systemctl", "--user", "show", systemdServiceName,
		"--property=ActiveState,MainPID,UnitFileState")
	if err != nil {
		// Installed but systemctl could not describe it
		status.State = ServiceStateDisabled
		return status, nil
	}

	status.State, status.PID, status.Running = parseSystemctlOutput(string(output))
	return status, nil
}

// IsInstalled checks if the unit file exists.
func (m *systemdManager) IsInstalled() (bool, error) {
	unitPath, err := getUnitPath()
	if err != nil {
		return false, err
	}
	return fileExists(unitPath)
}

// parseSystemctlOutput parses the output of systemctl show.
// Returns service state, PID, and whether the service is running.
func parseSystemctlOutput(output string) (ServiceState, int, bool) {
	state := ServiceStateDisabled
	pid := 0
	running := false

	for line := range strings.SplitSeq(strings.TrimSpace(output), "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}

		switch key {
		case "ActiveState":
			if value == "active" || value == "activating" || value == "reloading" {
				running = true
			}
		case "MainPID":
			if p, err := strconv.Atoi(value); err == nil && p > 0 {
				pid = p
			}
		case "UnitFileState":
			switch value {
			case "enabled", "enabled-runtime":
				state = ServiceStateEnabled
			case "disabled":
				state = ServiceStateDisabled
			}
		}
	}

	return state, pid, running
}
