package subcommands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/compage/component"
	"github.com/leefowlercu/compage/internal/cmdutil"
	"github.com/leefowlercu/compage/internal/config"
	"github.com/leefowlercu/compage/internal/daemonclient"
	"github.com/leefowlercu/compage/internal/report"
)

// Flag variables for the kill command.
var (
	killAll bool
)

// KillCmd cancels one instance of a running host, or all of them.
var KillCmd = &cobra.Command{
	Use:   "kill <sid> | --all",
	Short: "Cancel one instance or every instance of the running host",
	Long: "Cancel one instance or every instance of the running host.\n\n" +
		"Asks the host over its HTTP server to cancel the launched instance with the given " +
		"string id and wait for its lifecycle to finish. The other instances keep running.\n\n" +
		"With --all the host interrupts itself: every instance is cancelled and joined within the " +
		"shutdown timeout and the process exits.",
	Example: `  # Stop the heartbeat instance
  compage daemon kill heartbeat

  # Stop every instance and the host
  compage daemon kill --all`,
	Args:    cmdutil.Args(cobra.MaximumNArgs(1)),
	PreRunE: validateKill,
	RunE:    runKill,
}

func init() {
	KillCmd.Flags().BoolVar(&killAll, "all", false, "Cancel every instance and stop the host")
}

func validateKill(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")
	switch {
	case all && len(args) > 0:
		return fmt.Errorf("--all does not take a sid; %w", component.ErrInvalidArguments)
	case !all && len(args) == 0:
		return fmt.Errorf("a sid or --all is required; %w", component.ErrInvalidArguments)
	case !all && args[0] == "":
		return fmt.Errorf("sid must not be empty; %w", component.ErrInvalidArguments)
	}

	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runKill(cmd *cobra.Command, args []string) error {
	client, err := daemonclient.NewFromConfig(config.Get(), daemonclient.WithTimeout(daemonclient.KillTimeout))
	if err != nil {
		return fmt.Errorf("failed to initialize host client; %w", err)
	}

	if killAll {
		resp, err := client.Shutdown(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to stop host; %w", err)
		}
		if !isQuiet(cmd) {
			fmt.Fprintf(cmd.OutOrStdout(), "Host %s is stopping\n", resp.RunID)
		}
		return nil
	}

	info, err := client.Kill(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to kill %q; %w", args[0], err)
	}

	if !isQuiet(cmd) {
		fmt.Fprintln(cmd.OutOrStdout(), formatKilled(info))
	}
	return nil
}

func formatKilled(info *report.InstanceInfo) string {
	line := fmt.Sprintf("Instance %s (#%d, %s): %s", info.SID, info.ID, info.Name, info.State)
	if info.Error != "" {
		line += "\n  " + info.Error
	}
	return line
}
