package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X guidechat/internal/cli.Version=...".
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func versionInfo() string {
	return fmt.Sprintf("guidechat %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of guidechat",
		Args:  cobra.NoArgs,
		// version needs neither config nor logging
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionInfo())
		},
	}
}
