package version

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func runVersionCmd(t *testing.T, args ...string) string {
	t.Helper()

	buf := new(bytes.Buffer)
	cmd := &cobra.Command{
		Use:     VersionCmd.Use,
		Args:    VersionCmd.Args,
		PreRunE: VersionCmd.PreRunE,
		RunE:    VersionCmd.RunE,
	}
	cmd.Flags().BoolVar(&versionShort, "short", false, "")
	cmd.SetOut(buf)
	cmd.SetArgs(append([]string{}, args...))

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	return buf.String()
}

func TestVersionCommandOutput(t *testing.T) {
	output := runVersionCmd(t)

	requiredLabels := []string{"Version:", "Git Commit:", "Build Date:", "Go Version:", "Platform:"}
	for _, label := range requiredLabels {
		if !strings.Contains(output, label) {
			t.Errorf("version output missing label %q", label)
		}
	}
}

func TestVersionCommandOutputFormat(t *testing.T) {
	lines := strings.Split(strings.TrimSpace(runVersionCmd(t)), "\n")

	if len(lines) != 5 {
		t.Errorf("version output has %d lines, expected 5", len(lines))
	}

	for i, line := range lines {
		if !strings.Contains(line, ":") {
			t.Errorf("line %d missing colon separator: %q", i+1, line)
		}
	}
}

func TestVersionCommandShort(t *testing.T) {
	output := strings.TrimSpace(runVersionCmd(t, "--short"))

	if strings.Contains(output, "\n") {
		t.Errorf("--short output should be one line, got %q", output)
	}
	if !strings.HasPrefix(output, "compage ") {
		t.Errorf("--short output = %q, want compage prefix", output)
	}
}
