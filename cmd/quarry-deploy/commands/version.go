package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version information, injected from main via SetVersionInfo.
var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

// SetVersionInfo records build-time version information for the version
// command.
func SetVersionInfo(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date
}

// Version returns the version command.
func Version() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "quarry-deploy %s (commit %s, built %s)\n",
				buildVersion, buildCommit, buildDate)
		},
	}
}
