// Package launch implements the launch command for running every component
// with its compiled-in defaults.
package launch

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/compage/component"
	"github.com/leefowlercu/compage/engine"
	"github.com/leefowlercu/compage/internal/cmdutil"
	"github.com/leefowlercu/compage/internal/daemon"
)

// Flag variables for the launch command.
var (
	launchComponents []string
)

// LaunchCmd runs one default instance of every registered component.
var LaunchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Launch every component with its defaults",
	Long: "Launch every component with its defaults.\n\n" +
		"Creates one enabled instance per registered component, configured with the compiled-in " +
		"defaults, and runs them as if they had been loaded from the generated configuration file. " +
		"Use --component to launch only the named instances.",
	Example: `  # Launch everything
  compage launch

  # Launch only the heartbeat
  compage launch --component heartbeat`,
	Args:    cmdutil.Args(cobra.NoArgs),
	PreRunE: validateLaunch,
	RunE:    runLaunch,
}

func init() {
	LaunchCmd.Flags().StringSliceVarP(&launchComponents, "component", "c", nil,
		"Launch only the instances with these string ids (repeatable)")
}

func validateLaunch(cmd *cobra.Command, args []string) error {
	for _, sid := range launchComponents {
		if sid == "" {
			return fmt.Errorf("--component must not be empty; %w", component.ErrInvalidArguments)
		}
	}

	// All validation passed - errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runLaunch(cmd *cobra.Command, args []string) error {
	rt, err := cmdutil.NewRuntime(component.Default, slog.Default())
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.LoadDefaults(); err != nil {
		return err
	}

	var opts []daemon.Option
	if len(launchComponents) > 0 {
		// Unknown ids are argument errors, not launch failures.
		for _, sid := range launchComponents {
			if rt.Instances().FindBySID(sid) == nil {
				return fmt.Errorf("no component instance %q; %w", sid, component.ErrInvalidArguments)
			}
		}
		opts = append(opts, daemon.WithLaunchFunc(launchSelected(launchComponents)))
	}

	return cmdutil.Host(cmd.Context(), rt, opts...)
}

func launchSelected(sids []string) func(*engine.Runtime) error {
	return func(rt *engine.Runtime) error {
		var errs []error
		for _, sid := range sids {
			if err := rt.LaunchBySID(sid); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}
