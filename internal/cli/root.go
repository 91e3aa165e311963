// Package cli implements the guidechat command line.
package cli

import (
	"guidechat/internal/config"
	"guidechat/internal/logging"

	"github.com/spf13/cobra"
)

var (
	logLevel string

	// loaded at init time
	cfg *config.Config
	log *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guidechat",
		Short: "Guided property-search chat for Vietnamese rentals",
		Long:  "guidechat walks a user through a short Vietnamese conversation and turns the answers into a property search.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}
			log = logging.NewFromFormat(cfg.Logging.Format, cfg.Logging.Level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newSnapshotCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
