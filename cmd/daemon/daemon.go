// Package daemon provides the daemon parent command and subcommands.
package daemon

import (
	"github.com/spf13/cobra"

	"github.com/leefowlercu/compage/cmd/daemon/subcommands"
)

// DaemonCmd is the parent command for inspecting and controlling a running host.
var DaemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Inspect, control and install compage hosts",
	Long: "Inspect and control a running compage host.\n\n" +
		"A host is a compage process running a configuration file. These commands find it through " +
		"the pid_file setting and talk to it over its HTTP server when http.enabled is set.",
}

func init() {
	DaemonCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress output")

	// Register subcommands
	DaemonCmd.AddCommand(subcommands.StatusCmd)
	DaemonCmd.AddCommand(subcommands.StopCmd)
	DaemonCmd.AddCommand(subcommands.KillCmd)
	DaemonCmd.AddCommand(subcommands.InstallCmd)
	DaemonCmd.AddCommand(subcommands.UninstallCmd)
}
