package cmdutil

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/compage/component"
)

// Args wraps a cobra positional-argument validator so its failures map to
// the invalid-arguments exit code.
func Args(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return fmt.Errorf("%w; %w", err, component.ErrInvalidArguments)
		}
		return nil
	}
}

// FlagError marks flag parsing failures as invalid arguments. Subcommands
// inherit it from the root.
func FlagError(cmd *cobra.Command, err error) error {
	return fmt.Errorf("%w; %w", err, component.ErrInvalidArguments)
}
