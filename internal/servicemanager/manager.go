package servicemanager

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// ServiceState represents the installation state of the service.
type ServiceState string

const (
	// ServiceStateEnabled indicates the service is installed and enabled for auto-start.
	ServiceStateEnabled ServiceState = "enabled"

	// ServiceStateDisabled indicates the service is installed but not enabled for auto-start.
	ServiceStateDisabled ServiceState = "disabled"

	// ServiceStateNotInstalled indicates the service is not installed.
	ServiceStateNotInstalled ServiceState = "not-installed"
)

// String returns the service state as a string.
func (s ServiceState) String() string {
	return string(s)
}

// ServiceSpec describes the host the service runs.
type ServiceSpec struct {
	// BinaryPath is the compage executable. Empty means BinaryPath().
	BinaryPath string

	// ConfigPath is the ini file the host loads. Required.
	ConfigPath string

	// SettingsPath is an optional compage.yaml passed with --settings.
	SettingsPath string
}

// resolve fills in the binary path and makes the file paths absolute so the
// service does not depend on its working directory.
func (s ServiceSpec) resolve() (ServiceSpec, error) {
	if s.ConfigPath == "" {
		return s, fmt.Errorf("service requires a component configuration file")
	}
	if s.BinaryPath == "" {
		s.BinaryPath = BinaryPath()
	}

	abs, err := filepath.Abs(s.ConfigPath)
	if err != nil {
		return s, fmt.Errorf("failed to resolve %s; %w", s.ConfigPath, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return s, fmt.Errorf("component configuration file not accessible; %w", err)
	}
	s.ConfigPath = abs

	if s.SettingsPath != "" {
		abs, err := filepath.Abs(s.SettingsPath)
		if err != nil {
			return s, fmt.Errorf("failed to resolve %s; %w", s.SettingsPath, err)
		}
		s.SettingsPath = abs
	}

	return s, nil
}

// Args returns the command line the service runs, without the binary.
func (s ServiceSpec) Args() []string {
	var args []string
	if s.SettingsPath != "" {
		args = append(args, "--settings", s.SettingsPath)
	}
	return append(args, s.ConfigPath)
}

// ServiceStatus represents the current status of the installed service.
type ServiceStatus struct {
	// Running indicates whether the service manager reports the host as running.
	Running bool

	// PID is the process ID of the host (0 if not running).
	PID int

	// State indicates the installation state of the service.
	State ServiceState
}

// Manager provides platform-agnostic service management.
type Manager interface {
	// Install writes the service file for spec and enables auto-start.
	Install(ctx context.Context, spec ServiceSpec) error

	// Uninstall stops the service, disables auto-start, and removes the service file.
	Uninstall(ctx context.Context) error

	// Start starts the host via the system service manager.
	Start(ctx context.Context) error

	// Stop stops the host via the system service manager.
	Stop(ctx context.Context) error

	// Restart stops and starts the host.
	Restart(ctx context.Context) error

	// Status returns the service state.
	Status(ctx context.Context) (ServiceStatus, error)

	// IsInstalled checks if the service file exists.
	IsInstalled() (bool, error)
}

// CommandExecutor abstracts command execution for testability.
type CommandExecutor interface {
	// Run executes a command and returns its combined output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type defaultExecutor struct{}

func (e *defaultExecutor) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// NewCommandExecutor returns the default command executor.
func NewCommandExecutor() CommandExecutor {
	return &defaultExecutor{}
}

// New returns the Manager for the current platform.
// Returns an error if the platform is not supported.
func New() (Manager, error) {
	return NewWithExecutor(NewCommandExecutor())
}

// NewWithExecutor returns a Manager that runs its commands through executor.
func NewWithExecutor(executor CommandExecutor) (Manager, error) {
	return newForPlatform(DetectPlatform(), executor)
}

func newForPlatform(platform Platform, executor CommandExecutor) (Manager, error) {
	switch platform.Supervisor() {
	case "launchd":
		return newLaunchdManager(executor), nil
	case "systemd":
		return newSystemdManager(executor), nil
	default:
		return nil, fmt.Errorf("platform %s is not supported; services need systemd or launchd", platform)
	}
}

// fileExists reports whether path exists.
func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func writeServiceFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create %s; %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s; %w", path, err)
	}
	return nil
}
