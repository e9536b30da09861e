package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// ErrAlreadyRunning indicates that another compage process holds the PID file.
var ErrAlreadyRunning = errors.New("compage already running")

// PIDFile guards a long-running launch against a second copy using the same
// component configuration.
type PIDFile struct {
	path string
}

// NewPIDFile creates a new PIDFile instance with the given path.
func NewPIDFile(path string) *PIDFile {
	return &PIDFile{path: path}
}

// Path returns the path to the PID file.
func (p *PIDFile) Path() string {
	return p.path
}

// Write writes the current process's PID to the file through a temporary
// file and rename.
func (p *PIDFile) Write() error {
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create PID file directory; %w", err)
	}

	tmpPath := p.path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write temporary PID file; %w", err)
	}

	if err := os.Rename(tmpPath, p.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename PID file; %w", err)
	}

	return nil
}

// Read reads and returns the PID from the file.
func (p *PIDFile) Read() (int, error) {
	content, err := os.ReadFile(p.path)
	if err != nil {
		return 0, fmt.Errorf("failed to read PID file; %w", err)
	}

	pidStr := strings.TrimSpace(string(content))
	if pidStr == "" {
		return 0, errors.New("empty PID file")
	}

	pid, err := strconv.Atoi(pidStr)
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file; %w", err)
	}
	if pid <= 0 {
		return 0, fmt.Errorf("invalid PID %d; must be positive", pid)
	}

	return pid, nil
}

// Remove removes the PID file. A missing file is not an error.
func (p *PIDFile) Remove() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file; %w", err)
	}
	return nil
}

// IsStale reports whether the PID file names a process that no longer runs.
// A missing file is not stale.
func (p *PIDFile) IsStale() (bool, error) {
	pid, err := p.Read()
	if err != nil {
		if _, statErr := os.Stat(p.path); os.IsNotExist(statErr) {
			return false, nil
		}
		return false, fmt.Errorf("PID file exists but unreadable; %w", err)
	}

	// Signal 0 only probes for existence.
	err = syscall.Kill(pid, 0)
	switch {
	case err == nil, errors.Is(err, syscall.EPERM):
		return false, nil
	case errors.Is(err, syscall.ESRCH):
		return true, nil
	default:
		return false, fmt.Errorf("failed to check process %d; %w", pid, err)
	}
}

// CheckAndClaim writes the current PID unless a live process already holds
// the file, in which case it returns ErrAlreadyRunning. Stale files are
// replaced.
func (p *PIDFile) CheckAndClaim() error {
	if _, err := os.Stat(p.path); os.IsNotExist(err) {
		return p.Write()
	}

	stale, err := p.IsStale()
	if err != nil {
		return fmt.Errorf("failed to check if PID file is stale; %w", err)
	}
	if !stale {
		pid, _ := p.Read()
		return fmt.Errorf("pid %d holds %s; %w", pid, p.path, ErrAlreadyRunning)
	}

	if err := p.Remove(); err != nil {
		return fmt.Errorf("failed to remove stale PID file; %w", err)
	}
	return p.Write()
}
