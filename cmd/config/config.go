// Package config provides the config parent command and subcommands.
package config

import (
	"github.com/spf13/cobra"

	"github.com/leefowlercu/compage/cmd/config/subcommands"
)

// ConfigCmd is the parent command for all settings-related subcommands.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage compage process settings",
	Long: "Manage compage process settings.\n\n" +
		"The config command allows you to view, create, validate, and reset the process " +
		"settings (logging, shutdown timeout, HTTP server, PID file). Settings are stored in a " +
		"YAML file located at ~/.config/compage/compage.yaml by default. Component " +
		"configuration is not a setting; it lives in the ini file passed to compage.",
}

func init() {
	// Register subcommands
	ConfigCmd.AddCommand(subcommands.ShowCmd)
	ConfigCmd.AddCommand(subcommands.InitCmd)
	ConfigCmd.AddCommand(subcommands.ResetCmd)
	ConfigCmd.AddCommand(subcommands.ValidateCmd)
}
