package subcommands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/compage/component"
	"github.com/leefowlercu/compage/internal/cmdutil"
)

// UninstallCmd removes the user service written by install.
var UninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Stop and remove the compage user service",
	Long: "Stop and remove the compage user service.\n\n" +
		"Stops the service, disables auto-start and deletes the unit or plist file. " +
		"Nothing happens when no service is installed.",
	Args:    cmdutil.Args(cobra.NoArgs),
	PreRunE: validateUninstall,
	RunE:    runUninstall,
}

func validateUninstall(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	return nil
}

func runUninstall(cmd *cobra.Command, args []string) error {
	manager, err := newServiceManager()
	if err != nil {
		return fmt.Errorf("service uninstall unavailable; %w; %w", component.ErrSystem, err)
	}

	installed, err := manager.IsInstalled()
	if err != nil {
		return fmt.Errorf("failed to check service; %w; %w", component.ErrSystem, err)
	}
	if !installed {
		if !isQuiet(cmd) {
			fmt.Fprintln(cmd.OutOrStdout(), "Service is not installed")
		}
		return nil
	}

	if err := manager.Uninstall(cmd.Context()); err != nil {
		return fmt.Errorf("failed to uninstall service; %w; %w", component.ErrSystem, err)
	}
	if !isQuiet(cmd) {
		fmt.Fprintln(cmd.OutOrStdout(), "Service uninstalled")
	}
	return nil
}
