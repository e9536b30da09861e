package subcommands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/compage/component"
	"github.com/leefowlercu/compage/internal/cmdutil"
	"github.com/leefowlercu/compage/internal/config"
)

// ValidateCmd validates a settings file.
var ValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate the settings file",
	Long: "Validate the settings file.\n\n" +
		"Checks the settings file for syntax errors and validates that all values are in range. " +
		"Without a path the file in use is checked. Returns exit code 0 if valid, 5 if invalid.",
	Example: `  # Validate the settings in use
  compage config validate

  # Validate another file
  compage config validate ./compage.yaml`,
	Args:    cmdutil.Args(cobra.MaximumNArgs(1)),
	PreRunE: validateValidate,
	RunE:    runValidate,
}

func validateValidate(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configPath := settingsPath()
	if len(args) == 1 {
		configPath = args[0]
	}

	if !config.ConfigExistsAt(configPath) {
		if len(args) == 1 {
			return fmt.Errorf("settings file %s not found; %w", configPath, component.ErrSystem)
		}
		fmt.Fprintf(out, "No settings file found at %s\n", configPath)
		fmt.Fprintln(out, "Using default settings.")
		return nil
	}

	// Loading also validates
	if _, err := config.LoadFromPath(configPath); err != nil {
		fmt.Fprintln(out, "Settings validation failed:")
		fmt.Fprintf(out, "  %v\n", err)
		return fmt.Errorf("settings are invalid; %w", component.ErrConfigParse)
	}

	fmt.Fprintf(out, "Settings are valid: %s\n", configPath)
	return nil
}
