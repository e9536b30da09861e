package subcommands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/compage/internal/config"
)

var (
	initPath  string
	initForce bool
)

// InitCmd writes a settings file holding the defaults.
var InitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a settings file with default values",
	Long: "Write a settings file with default values.\n\n" +
		"Creates ~/.config/compage/compage.yaml, or the file named by --path, holding every " +
		"setting at its default. An existing file is kept unless --force is given.",
	Example: `  # Create the default settings file
  compage config init

  # Overwrite a settings file elsewhere
  compage config init --path ./compage.yaml --force`,
	PreRunE: validateInit,
	RunE:    runInit,
}

func init() {
	InitCmd.Flags().StringVar(&initPath, "path", "", "Settings file to write (default ~/.config/compage/compage.yaml)")
	InitCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing settings file")
}

func validateInit(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	path := initPath
	if path == "" {
		path = config.DefaultConfigPath()
	}

	if config.ConfigExistsAt(path) && !initForce {
		fmt.Fprintf(out, "Settings file already exists: %s\n", path)
		fmt.Fprintln(out, "Use --force to overwrite it.")
		return nil
	}

	cfg := config.NewDefaultConfig()
	if err := config.Write(&cfg, path); err != nil {
		return err
	}

	fmt.Fprintf(out, "Settings written to %s\n", config.ExpandPath(path))
	return nil
}
