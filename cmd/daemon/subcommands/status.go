package subcommands

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/compage/internal/config"
	"github.com/leefowlercu/compage/internal/daemon"
	"github.com/leefowlercu/compage/internal/daemonclient"
	"github.com/leefowlercu/compage/internal/servicemanager"
)

// HostStatus holds the status information about a host.
type HostStatus struct {
	Running      bool                 `json:"running"`
	PID          int                  `json:"pid,omitempty"`
	StalePIDFile bool                 `json:"stale_pid_file,omitempty"`
	Health       *daemon.HealthStatus `json:"health,omitempty"`

	// Service is set when a user service is installed.
	Service *servicemanager.ServiceStatus `json:"service,omitempty"`
}

// StatusCmd shows the host status.
var StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show host status and instance states",
	Long: "Show host status and instance states.\n\n" +
		"Displays whether a host is running, its PID, and, when its HTTP server is enabled, " +
		"its health and the number of instances in each lifecycle state.",
	Example: `  # Check host status
  compage daemon status`,
	PreRunE: validateStatus,
	RunE:    runStatus,
}

func validateStatus(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	status, err := getHostStatus(cfg.PIDFile, healthFetcher(cmd.Context(), cfg))
	if err != nil {
		return fmt.Errorf("failed to get host status; %w", err)
	}
	status.Service = serviceStatus(cmd.Context())

	if !isQuiet(cmd) {
		fmt.Fprintln(cmd.OutOrStdout(), formatStatus(status))
	}
	return nil
}

// healthFetcher returns a function querying /readyz, or nil when the HTTP
// server is disabled.
func healthFetcher(ctx context.Context, cfg *config.Config) func() (*daemon.HealthStatus, error) {
	client, err := daemonclient.NewFromConfig(cfg)
	if err != nil {
		return nil
	}
	return func() (*daemon.HealthStatus, error) {
		return client.Ready(ctx)
	}
}

// serviceStatus returns the installed service's status, or nil when there
// is none or the platform has no service manager.
func serviceStatus(ctx context.Context) *servicemanager.ServiceStatus {
	manager, err := newServiceManager()
	if err != nil {
		return nil
	}
	st, err := manager.Status(ctx)
	if err != nil || st.State == servicemanager.ServiceStateNotInstalled {
		return nil
	}
	return &st
}

// getHostStatus combines the PID file at pidPath with the health reported by
// fetch. Either may be absent.
func getHostStatus(pidPath string, fetch func() (*daemon.HealthStatus, error)) (*HostStatus, error) {
	status := &HostStatus{}

	if pidPath != "" {
		pidFile := daemon.NewPIDFile(pidPath)
		pid, err := pidFile.Read()
		switch {
		case err == nil:
			status.PID = pid
			stale, staleErr := pidFile.IsStale()
			if staleErr != nil {
				return nil, staleErr
			}
			if stale {
				status.StalePIDFile = true
				return status, nil
			}
			status.Running = true
		case errors.Is(err, os.ErrNotExist):
			// No PID file; the HTTP server may still answer.
		default:
			return nil, err
		}
	}

	if fetch == nil {
		return status, nil
	}
	health, err := fetch()
	if err != nil {
		return status, nil
	}
	status.Running = true
	status.Health = health
	return status, nil
}

// formatStatus formats the host status for display.
func formatStatus(status *HostStatus) string {
	var sb strings.Builder

	if !status.Running {
		sb.WriteString("Host: not running")
		if status.StalePIDFile {
			sb.WriteString(fmt.Sprintf(" (stale PID file with PID %d)", status.PID))
		}
		writeService(&sb, status.Service)
		return sb.String()
	}

	if status.PID > 0 {
		sb.WriteString(fmt.Sprintf("Host: running (PID %d)", status.PID))
	} else {
		sb.WriteString("Host: running")
	}

	if h := status.Health; h != nil {
		sb.WriteString(fmt.Sprintf("\nHealth: %s", h.Status))
		sb.WriteString(fmt.Sprintf("\nReady: %v", h.Ready))
		if h.RunID != "" {
			sb.WriteString(fmt.Sprintf("\nRun: %s", h.RunID))
		}

		if len(h.States) > 0 {
			sb.WriteString("\nInstances:")
			for _, state := range slices.Sorted(maps.Keys(h.States)) {
				sb.WriteString(fmt.Sprintf("\n  - %s: %d", state, h.States[state]))
			}
		}
		if len(h.Failed) > 0 {
			sb.WriteString(fmt.Sprintf("\nFailed: %s", strings.Join(h.Failed, ", ")))
		}
	}

	writeService(&sb, status.Service)
	return sb.String()
}

func writeService(sb *strings.Builder, svc *servicemanager.ServiceStatus) {
	if svc == nil {
		return
	}
	sb.WriteString(fmt.Sprintf("\nService: %s", svc.State))
	if svc.Running {
		sb.WriteString(" (active)")
	}
}
