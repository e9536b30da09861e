package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/compage/cmd/config"
	"github.com/leefowlercu/compage/cmd/daemon"
	"github.com/leefowlercu/compage/cmd/generate"
	"github.com/leefowlercu/compage/cmd/launch"
	"github.com/leefowlercu/compage/cmd/list"
	"github.com/leefowlercu/compage/cmd/version"
	"github.com/leefowlercu/compage/component"
	"github.com/leefowlercu/compage/internal/cmdutil"
	internalconfig "github.com/leefowlercu/compage/internal/config"
	"github.com/leefowlercu/compage/internal/logging"
)

// logManager is the global logging manager, created in init() and upgraded after config loads
var logManager *logging.Manager

// Flag variables for the root command.
var (
	rootLogLevel string
	rootSettings string
	rootStrict   bool
)

var compageCmd = &cobra.Command{
	Use:   "compage [config.ini]",
	Short: "Run statically registered components from an ini configuration",
	Long: "compage hosts the components compiled into this binary.\n\n" +
		"Each section of the ini configuration file creates one instance of the component it names. " +
		"Enabled instances are launched and run through their init, loop and exit handlers until they " +
		"finish or the process receives SIGINT or SIGTERM.\n\n" +
		"Without a configuration file the help message is printed.",
	Example: `  # Write the default configuration and run it
  compage generate components.ini
  compage components.ini

  # List the compiled-in components
  compage list`,
	Args:              cmdutil.Args(cobra.MaximumNArgs(1)),
	PersistentPreRunE: runInitialize,
	PreRunE:           validateRoot,
	RunE:              runRoot,
}

func init() {
	// Create logging Manager in bootstrap mode (stderr text only)
	logManager = logging.NewManager()

	compageCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "",
		"Log level (debug, info, warn, error); overrides the settings file")
	compageCmd.PersistentFlags().StringVar(&rootSettings, "settings", "",
		"Path to the compage.yaml settings file")
	compageCmd.Flags().BoolVar(&rootStrict, "strict", false,
		"Fail on malformed lines and unknown sections instead of skipping them")

	compageCmd.SetFlagErrorFunc(cmdutil.FlagError)

	compageCmd.AddCommand(generate.GenerateCmd)
	compageCmd.AddCommand(list.ListCmd)
	compageCmd.AddCommand(launch.LaunchCmd)
	compageCmd.AddCommand(daemon.DaemonCmd)
	compageCmd.AddCommand(config.ConfigCmd)
	compageCmd.AddCommand(version.VersionCmd)
}

func runInitialize(cmd *cobra.Command, args []string) error {
	logger := logManager.Logger()

	// Initialize config subsystem
	if err := internalconfig.Init(rootSettings); err != nil {
		return fmt.Errorf("failed to load settings; %w; %w", component.ErrInvalidArguments, err)
	}

	cfg := internalconfig.Get()
	levelStr := cfg.LogLevel
	if rootLogLevel != "" {
		levelStr = rootLogLevel
	}
	level, ok := logging.ParseLevel(levelStr)
	if !ok {
		if rootLogLevel != "" {
			return fmt.Errorf("invalid --log-level %q; must be one of: %s; %w",
				rootLogLevel, strings.Join(logging.LevelNames, ", "), component.ErrInvalidArguments)
		}
		level = logging.DefaultLevel
		logger.Warn("invalid log level configured, using default", "configured", levelStr, "default", "info")
	}

	if err := logManager.Upgrade(cfg.LogFile, level); err != nil {
		logger.Warn("failed to enable file logging, continuing with stderr only", "error", err)
	}
	slog.SetDefault(logManager.Logger())

	internalconfig.SetupSignalHandler(applyReloaded)

	return nil
}

// applyReloaded follows log level changes unless --log-level pinned it.
func applyReloaded(cfg *internalconfig.Config) {
	if rootLogLevel != "" {
		return
	}
	if level, ok := logging.ParseLevel(cfg.LogLevel); ok {
		logManager.SetLevel(level)
	}
}

func validateRoot(cmd *cobra.Command, args []string) error {
	// All validation passed - errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	rt, err := cmdutil.NewRuntime(component.Default, logManager.Logger())
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := cmdutil.LoadFile(rt, args[0], rootStrict); err != nil {
		return err
	}

	watcher, err := internalconfig.Watch(applyReloaded)
	if err != nil {
		logManager.Logger().Warn("settings file will not be watched", "error", err)
	}
	defer func() { _ = watcher.Stop() }()

	return cmdutil.Host(cmd.Context(), rt)
}

// Execute runs the root command and returns the error that ended it.
func Execute() error {
	compageCmd.SilenceErrors = true

	// Ensure logging is properly closed on exit
	defer func() { _ = logManager.Close() }()
	defer internalconfig.StopSignalHandler()

	cmd, err := compageCmd.ExecuteC()
	if err != nil {
		if cmd == nil {
			cmd = compageCmd
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if !cmd.SilenceUsage {
			fmt.Fprintf(os.Stderr, "\n")
			cmd.SetOut(os.Stderr)
			_ = cmd.Usage()
		}

		return err
	}

	return nil
}
