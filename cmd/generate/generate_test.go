package generate

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/compage/component"
	"github.com/leefowlercu/compage/internal/components"
)

func createTestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     GenerateCmd.Use,
		Args:    GenerateCmd.Args,
		PreRunE: GenerateCmd.PreRunE,
		RunE:    GenerateCmd.RunE,
	}
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return cmd
}

func TestGenerateCmd_Stdout(t *testing.T) {
	cmd := createTestCommand()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"-"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("generate command failed: %v", err)
	}

	output := stdout.String()
	for _, want := range []string{"[" + components.HeartbeatName + "]", "IntervalMs=1000", "[" + components.GreeterName + "]", "Target=world"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	if strings.Index(output, "["+components.HeartbeatName+"]") > strings.Index(output, "["+components.GreeterName+"]") {
		t.Error("sections should follow registration order")
	}
}

func TestGenerateCmd_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "components.ini")

	cmd := createTestCommand()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{path})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("generate command failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read generated file: %v", err)
	}
	if !strings.Contains(string(content), "["+components.SamplerName+"]") {
		t.Errorf("generated file missing sampler section:\n%s", content)
	}
	if !strings.Contains(stdout.String(), path) {
		t.Errorf("expected confirmation naming %s, got: %s", path, stdout.String())
	}
}

func TestGenerateCmd_UnwritablePath(t *testing.T) {
	cmd := createTestCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing", "components.ini")})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for a path in a missing directory")
	}
	if code := component.ExitCode(err); code != component.ExitSystemFailure {
		t.Errorf("ExitCode() = %d, want %d", code, component.ExitSystemFailure)
	}
}

func TestGenerateCmd_RequiresPath(t *testing.T) {
	cmd := createTestCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error without a path")
	}
	if code := component.ExitCode(err); code != component.ExitInvalidArgs {
		t.Errorf("ExitCode() = %d, want %d", code, component.ExitInvalidArgs)
	}
}
