package subcommands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/compage/component"
	"github.com/leefowlercu/compage/internal/cmdutil"
	"github.com/leefowlercu/compage/internal/config"
	"github.com/leefowlercu/compage/internal/servicemanager"
)

// newServiceManager is replaced in tests.
var newServiceManager = servicemanager.New

var installNoStart bool

// InstallCmd installs a host as a per-user service.
var InstallCmd = &cobra.Command{
	Use:   "install <config.ini>",
	Short: "Install a host for a configuration file as a user service",
	Long: "Install a host for a configuration file as a user service.\n\n" +
		"On Linux a systemd user unit (compage.service) is written and enabled; the host reports " +
		"readiness through sd_notify. On macOS a launchd agent is written and loaded. " +
		"The settings file in use, if any, is passed to the service with --settings.",
	Example: `  # Run components.ini at login
  compage daemon install ~/components.ini

  # Install without starting it now
  compage daemon install ~/components.ini --no-start`,
	Args:    cmdutil.Args(cobra.ExactArgs(1)),
	PreRunE: validateInstall,
	RunE:    runInstall,
}

func init() {
	InstallCmd.Flags().BoolVar(&installNoStart, "no-start", false, "Install without starting the service")
}

func validateInstall(cmd *cobra.Command, args []string) error {
	path := config.ExpandPath(args[0])
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("configuration file %s not accessible; %w; %w", args[0], component.ErrInvalidArguments, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory; %w", args[0], component.ErrInvalidArguments)
	}

	cmd.SilenceUsage = true
	return nil
}

func runInstall(cmd *cobra.Command, args []string) error {
	manager, err := newServiceManager()
	if err != nil {
		return fmt.Errorf("service install unavailable; %w; %w", component.ErrSystem, err)
	}

	spec := servicemanager.ServiceSpec{
		ConfigPath:   config.ExpandPath(args[0]),
		SettingsPath: config.ConfigFilePath(),
	}
	if err := manager.Install(cmd.Context(), spec); err != nil {
		return fmt.Errorf("failed to install service; %w; %w", component.ErrSystem, err)
	}

	out := cmd.OutOrStdout()
	if !isQuiet(cmd) {
		fmt.Fprintf(out, "Service installed for %s\n", spec.ConfigPath)
	}

	if installNoStart {
		return nil
	}
	if err := manager.Start(cmd.Context()); err != nil {
		return fmt.Errorf("service installed but failed to start; %w; %w", component.ErrSystem, err)
	}
	if !isQuiet(cmd) {
		fmt.Fprintln(out, "Service started")
	}
	return nil
}
