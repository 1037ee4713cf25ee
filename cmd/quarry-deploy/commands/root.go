// Package commands defines the CLI command structure and flag bindings.
package commands

import (
	"errors"

	"github.com/spf13/cobra"
)

// Root returns the root command for the quarry-deploy CLI.
//
// Invoking the binary without a subcommand prints usage and exits non-zero:
// there is no default action against infrastructure.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "quarry-deploy",
		Short:         "Manage the CloudFormation stack backing the quarry inference endpoint",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return errors.New("a command is required")
		},
	}

	cmd.AddCommand(Deploy())
	cmd.AddCommand(Destroy())
	cmd.AddCommand(Status())
	cmd.AddCommand(Invoke())
	cmd.AddCommand(Logs())
	cmd.AddCommand(Version())

	return cmd
}
