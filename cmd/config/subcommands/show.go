package subcommands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leefowlercu/compage/internal/config"
)

var (
	showRaw bool
)

// ShowCmd displays the current settings.
var ShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the current settings",
	Long: "Display the current settings.\n\n" +
		"Shows the effective compage settings with defaults and environment overrides applied. " +
		"Use --raw to show only the contents of the settings file.",
	Example: `  # Show effective settings
  compage config show

  # Show the settings file as written
  compage config show --raw`,
	PreRunE: validateShow,
	RunE:    runShow,
}

func init() {
	ShowCmd.Flags().BoolVar(&showRaw, "raw", false, "Show only the settings file contents (no defaults)")
}

func validateShow(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	if showRaw {
		return showRawConfig(cmd)
	}
	return showEffectiveConfig(cmd)
}

func showRawConfig(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	configPath := settingsPath()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(out, "# No settings file found")
			fmt.Fprintf(out, "# Default location: %s\n", configPath)
			return nil
		}
		return fmt.Errorf("failed to read settings file; %w", err)
	}

	fmt.Fprintf(out, "# Settings file: %s\n", configPath)
	fmt.Fprintln(out, string(data))
	return nil
}

func showEffectiveConfig(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	data, err := yaml.Marshal(config.Get())
	if err != nil {
		return fmt.Errorf("failed to format settings; %w", err)
	}

	source := config.ConfigFilePath()
	if source == "" {
		source = "none (defaults)"
	}
	fmt.Fprintln(out, "# Effective settings (with defaults)")
	fmt.Fprintf(out, "# Settings file: %s\n", source)
	fmt.Fprintln(out, string(data))
	return nil
}
