package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/compage/internal/cmdutil"
	"github.com/leefowlercu/compage/internal/version"
)

var versionShort bool

// VersionCmd displays version and build information.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version and build information",
	Long: "Display version and build information.\n\n" +
		"Shows the semantic version, git commit hash, build date, Go toolchain and platform " +
		"of the current compage binary.",
	Example: `  # Display version information
  compage version

  # One line, for scripts and bug reports
  compage version --short`,
	Args:    cmdutil.Args(cobra.NoArgs),
	PreRunE: validateVersion,
	RunE:    runVersion,
}

func init() {
	VersionCmd.Flags().BoolVar(&versionShort, "short", false, "Print a single line")
}

func validateVersion(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	return nil
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := version.Get()
	if versionShort {
		fmt.Fprintln(cmd.OutOrStdout(), info.Short())
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), info.String())
	return nil
}
