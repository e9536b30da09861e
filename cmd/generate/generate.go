// Package generate implements the generate command for writing the default
// component configuration.
package generate

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/compage/component"
	"github.com/leefowlercu/compage/internal/cmdutil"
)

// GenerateCmd writes one section per compiled-in component holding its defaults.
var GenerateCmd = &cobra.Command{
	Use:   "generate <path>",
	Short: "Generate the default configuration file",
	Long: "Generate the default configuration file.\n\n" +
		"Writes one section per registered component, in registration order, with every " +
		"configurable field set to its compiled-in default. Use '-' as the path to write " +
		"to standard output. An existing file is overwritten.",
	Example: `  # Write the defaults to a file
  compage generate components.ini

  # Print the defaults
  compage generate -`,
	Args:    cmdutil.Args(cobra.ExactArgs(1)),
	PreRunE: validateGenerate,
	RunE:    runGenerate,
}

func validateGenerate(cmd *cobra.Command, args []string) error {
	if args[0] == "" {
		return fmt.Errorf("path must not be empty; %w", component.ErrInvalidArguments)
	}

	// All validation passed - errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	rt, err := cmdutil.NewRuntime(component.Default, slog.Default())
	if err != nil {
		return err
	}
	defer rt.Close()

	if args[0] == "-" {
		return rt.GenerateConfig(cmd.OutOrStdout())
	}

	path, err := cmdutil.ResolvePath(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve %q; %w", args[0], err)
	}
	if err := rt.WriteDefaultConfig(path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Default configuration written to %s\n", path)
	return nil
}
