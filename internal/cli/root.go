package cli

import (
	"log/slog"

	"github.com/me/dagsim/internal/logging"
	"github.com/spf13/cobra"
)

var (
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
)

// NewRootCmd creates the root cobra command for the dagsim CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dagsim",
		Short: "dagsim — DAG workflow scheduling simulator",
		Long:  "dagsim simulates scheduling algorithms for task graphs on virtual host platforms.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flagDebug {
				flagLogLevel = "debug"
			}
			var err error
			logger, err = logging.New(flagLogLevel, flagLogFormat)
			return err
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newRunCmd(),
		newAlgorithmsCmd(),
		newResultsCmd(),
		newServeCmd(),
	)

	return root
}
