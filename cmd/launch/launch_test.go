package launch

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/compage/component"
	"github.com/leefowlercu/compage/engine"
	_ "github.com/leefowlercu/compage/internal/components"
)

func createTestCommand(args ...string) *cobra.Command {
	launchComponents = nil

	cmd := &cobra.Command{
		Use:     LaunchCmd.Use,
		Args:    LaunchCmd.Args,
		PreRunE: LaunchCmd.PreRunE,
		RunE:    LaunchCmd.RunE,
	}
	cmd.Flags().StringSliceVarP(&launchComponents, "component", "c", nil, "")
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs(append([]string{}, args...))
	return cmd
}

func TestLaunchCmd_SelectedComponents(t *testing.T) {
	cmd := createTestCommand("--component", "greeter", "-c", "sampler")
	if err := cmd.Execute(); err != nil {
		t.Fatalf("launch command failed: %v", err)
	}
}

func TestLaunchCmd_UnknownComponent(t *testing.T) {
	cmd := createTestCommand("--component", "nope")
	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for unknown component")
	}
	if code := component.ExitCode(err); code != component.ExitInvalidArgs {
		t.Errorf("ExitCode() = %d, want %d", code, component.ExitInvalidArgs)
	}
}

func TestLaunchCmd_RejectsArgs(t *testing.T) {
	cmd := createTestCommand("components.ini")
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for positional argument")
	}
}

func TestLaunchSelected_ReportsMissing(t *testing.T) {
	rt := engine.New(component.Default, engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	defer rt.Close()
	if err := rt.LoadDefaults(); err != nil {
		t.Fatalf("LoadDefaults() error = %v", err)
	}

	err := launchSelected([]string{"missing"})(rt)
	if !errors.Is(err, engine.ErrNotFound) {
		t.Errorf("launchSelected() error = %v, want ErrNotFound", err)
	}
	if rt.Instances().Len() != 3 {
		t.Errorf("instances = %d, want 3", rt.Instances().Len())
	}
}
