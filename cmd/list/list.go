// Package list implements the list command for displaying compiled-in components.
package list

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/compage/component"
	"github.com/leefowlercu/compage/internal/cmdutil"
	"github.com/leefowlercu/compage/internal/config"
	"github.com/leefowlercu/compage/internal/daemonclient"
	"github.com/leefowlercu/compage/internal/report"
)

// Flag variables for the list command.
var (
	listFormat string
	listRemote bool
	listStrict bool
)

// ListCmd lists the registered components and, given a configuration file,
// the instances it creates.
var ListCmd = &cobra.Command{
	Use:   "list [config.ini]",
	Short: "List the compiled-in components",
	Long: "List the components registered in this binary with their handlers and configurable fields.\n\n" +
		"When a configuration file is given, the instances it would create are listed as well. " +
		"Use --remote to fetch the live report from a running host over its HTTP server instead.",
	Example: `  # List components
  compage list

  # List components and the instances of a configuration file as YAML
  compage list components.ini --format yaml

  # Show the instances of a running host
  compage list --remote`,
	Args:    cmdutil.Args(cobra.MaximumNArgs(1)),
	PreRunE: validateList,
	RunE:    runList,
}

func init() {
	ListCmd.Flags().StringVarP(&listFormat, "format", "f", "text",
		fmt.Sprintf("Output format (%s)", strings.Join(report.Names(), ", ")))
	ListCmd.Flags().BoolVar(&listRemote, "remote", false,
		"Fetch the report from the running host")
	ListCmd.Flags().BoolVar(&listStrict, "strict", false,
		"Fail on malformed lines and unknown sections instead of skipping them")
}

func validateList(cmd *cobra.Command, args []string) error {
	if _, err := report.ForName(listFormat); err != nil {
		return fmt.Errorf("invalid --format; %w; %w", err, component.ErrInvalidArguments)
	}
	if listRemote && len(args) > 0 {
		return fmt.Errorf("--remote does not take a configuration file; %w", component.ErrInvalidArguments)
	}

	// All validation passed - errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if listRemote {
		client, err := daemonclient.NewFromConfig(config.Get())
		if err != nil {
			return fmt.Errorf("failed to initialize host client; %w", err)
		}
		data, err := client.Report(cmd.Context(), listFormat)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}

	rt, err := cmdutil.NewRuntime(component.Default, slog.Default())
	if err != nil {
		return err
	}
	defer rt.Close()

	if len(args) == 1 {
		if err := cmdutil.LoadFile(rt, args[0], listStrict); err != nil {
			return err
		}
	}

	f, _ := report.ForName(listFormat)
	data, err := f.Format(report.Build(rt))
	if err != nil {
		return fmt.Errorf("failed to format report; %w", err)
	}
	_, err = out.Write(data)
	return err
}
