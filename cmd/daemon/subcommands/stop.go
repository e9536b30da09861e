package subcommands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/compage/component"
	"github.com/leefowlercu/compage/internal/config"
	"github.com/leefowlercu/compage/internal/daemon"
)

// Errors for stop command
var (
	ErrNoHostRunning   = errors.New("no host running")
	ErrStalePIDFile    = errors.New("stale PID file found and cleaned up")
	ErrNoPIDFileConfig = errors.New("pid_file is not configured")
)

// StopCmd stops a running host.
var StopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running host gracefully",
	Long: "Stop the running host gracefully.\n\n" +
		"Sends SIGTERM to the process named in the PID file and waits for it to exit. The host " +
		"cancels its instances and joins them within its shutdown timeout. If the process does " +
		"not exit within --timeout, a warning is logged.",
	Example: `  # Stop the host
  compage daemon stop

  # Wait up to a minute
  compage daemon stop --timeout 1m`,
	PreRunE: validateStop,
	RunE:    runStop,
}

var (
	stopTimeout time.Duration
)

func init() {
	StopCmd.Flags().DurationVar(&stopTimeout, "timeout", 30*time.Second,
		"Maximum time to wait for the host to stop")
}

func validateStop(cmd *cobra.Command, args []string) error {
	if config.Get().PIDFile == "" {
		return fmt.Errorf("%w; set pid_file to stop a host; %w", ErrNoPIDFileConfig, component.ErrInvalidArguments)
	}

	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runStop(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	quiet := isQuiet(cmd)

	if err := stopHost(config.Get().PIDFile, stopTimeout); err != nil {
		switch {
		case errors.Is(err, ErrNoHostRunning):
			if !quiet {
				fmt.Fprintln(out, "No host is running")
			}
			return nil
		case errors.Is(err, ErrStalePIDFile):
			if !quiet {
				fmt.Fprintln(out, "Found stale PID file, cleaned up")
			}
			return nil
		}
		return fmt.Errorf("failed to stop host; %w", err)
	}

	if !quiet {
		fmt.Fprintln(out, "Host stopped")
	}
	return nil
}

// stopHost sends SIGTERM to the process named in the PID file at pidPath and
// waits up to timeout for it to exit.
func stopHost(pidPath string, timeout time.Duration) error {
	pidFile := daemon.NewPIDFile(pidPath)

	pid, err := pidFile.Read()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNoHostRunning
		}
		return err
	}

	if !isProcessRunning(pid) {
		_ = pidFile.Remove()
		return ErrStalePIDFile
	}

	slog.Debug("sending SIGTERM to host", "pid", pid)

	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send SIGTERM; %w", err)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !isProcessRunning(pid) {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	slog.Warn("host did not stop within timeout", "pid", pid, "timeout", timeout)
	return nil
}

// isProcessRunning checks if a process with the given PID is running.
func isProcessRunning(pid int) bool {
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}
