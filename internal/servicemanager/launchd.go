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
	"time"
)

const (
	// launchdServiceLabel is the launchd service identifier.
	launchdServiceLabel = "com.leefowlercu.compage"

	// launchdPlistName is the plist filename.
	launchdPlistName = launchdServiceLabel + ".plist"
)

// launchdPlistTemplate is the template for the launchd plist file.
const launchdPlistTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>{{.Label}}</string>
    <key>ProgramArguments</key>
    <array>
{{- range .ProgramArguments}}
        <string>{{.}}</string>
{{- end}}
    </array>
    <key>WorkingDirectory</key>
    <string>{{.WorkingDirectory}}</string>
    <key>RunAtLoad</key>
    <true/>
    <key>KeepAlive</key>
    <dict>
        <key>SuccessfulExit</key>
        <false/>
    </dict>
    <key>ThrottleInterval</key>
    <integer>10</integer>
</dict>
</plist>
`

type launchdManager struct {
	executor CommandExecutor
}

func newLaunchdManager(executor CommandExecutor) *launchdManager {
	return &launchdManager{
		executor: executor,
	}
}

// getPlistPath returns the path to the launchd plist file.
func getPlistPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory; %w", err)
	}
	return filepath.Join(home, "Library", "LaunchAgents", launchdPlistName), nil
}

// generatePlist generates the launchd plist content for a resolved spec.
// text/template does not escape, so paths are XML-escaped here.
func generatePlist(spec ServiceSpec) (string, error) {
	args := append([]string{spec.BinaryPath}, spec.Args()...)
	for i, arg := range args {
		args[i] = xmlEscape(arg)
	}

	data := struct {
		Label            string
		ProgramArguments []string
		WorkingDirectory string
	}{
		Label:            launchdServiceLabel,
		ProgramArguments: args,
		WorkingDirectory: xmlEscape(filepath.Dir(spec.ConfigPath)),
	}

	tmpl, err := template.New("plist").Parse(launchdPlistTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse plist template; %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute plist template; %w", err)
	}

	return buf.String(), nil
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	template.HTMLEscape(&buf, []byte(s))
	return buf.String()
}

// Install writes the launchd plist and loads it.
func (m *launchdManager) Install(ctx context.Context, spec ServiceSpec) error {
	spec, err := spec.resolve()
	if err != nil {
		return err
	}

	plistPath, err := getPlistPath()
	if err != nil {
		return err
	}

	content, err := generatePlist(spec)
	if err != nil {
		return err
	}

	if err := writeServiceFile(plistPath, content); err != nil {
		return err
	}

	// load -w also enables the service
	if _, err := m.executor.Run(ctx, "launchctl", "load", "-w", plistPath); err != nil {
		return fmt.Errorf("failed to load service with launchctl; %w", err)
	}

	return nil
}

// Uninstall unloads the service and removes the plist.
func (m *launchdManager) Uninstall(ctx context.Context) error {
	plistPath, err := getPlistPath()
	if err != nil {
		return err
	}

	_, _ = m.executor.Run(ctx, "launchctl", "unload", plistPath)

	if err := os.Remove(plistPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove plist file; %w", err)
	}

	return nil
}

// Start starts the host via launchctl.
func (m *launchdManager) Start(ctx context.Context) error {
	if _, err := m.executor.Run(ctx, "launchctl", "start", launchdServiceLabel); err != nil {
		return fmt.Errorf("failed to start service; %w", err)
	}
	return nil
}

// Stop stops the host via launchctl.
func (m *launchdManager) Stop(ctx context.Context) error {
	if _, err := m.executor.Run(ctx, "launchctl", "stop", launchdServiceLabel); err != nil {
		return fmt.Errorf("failed to stop service; %w", err)
	}
	return nil
}

// Restart stops and starts the host.
func (m *launchdManager) Restart(ctx context.Context) error {
	_ = m.Stop(ctx)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(100 * time.Millisecond):
	}

	return m.Start(ctx)
}

// Status returns the current service status.
func (m *launchdManager) Status(ctx context.Context) (ServiceStatus, error) {
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

	output, err := m.executor.Run(ctx, "launchctl", "list", launchdServiceLabel)
	if err != nil {
		// Installed but not loaded
		status.State = ServiceStateDisabled
		return status, nil //nolint:nilerr // not loaded is a state, not a failure
	}

	status.State = ServiceStateEnabled
	status.PID, status.Running = parseLaunchctlOutput(string(output))
	return status, nil
}

// IsInstalled checks if the plist file exists.
func (m *launchdManager) IsInstalled() (bool, error) {
	plistPath, err := getPlistPath()
	if err != nil {
		return false, err
	}
	return fileExists(plistPath)
}

// parseLaunchctlOutput parses the output of launchctl list <label>, which is
// either a dictionary with a "PID" = N; entry or a PID\tStatus\tLabel row.
func parseLaunchctlOutput(output string) (int, bool) {
	for line := range strings.SplitSeq(strings.TrimSpace(output), "\n") {
		line = strings.TrimSpace(line)

		if strings.HasPrefix(line, `"PID"`) {
			if _, value, ok := strings.Cut(line, "="); ok {
				value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), ";"))
				if pid, err := strconv.Atoi(value); err == nil && pid > 0 {
					return pid, true
				}
			}
		}

		fields := strings.Fields(line)
		if len(fields) >= 1 {
			if pid, err := strconv.Atoi(fields[0]); err == nil && pid > 0 {
				return pid, true
			}
		}
	}

	return 0, false
}
