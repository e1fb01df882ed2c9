// Command beyond is a hands-free command assistant: it turns utterances
// into actions through a trained intent classifier backed by static rules.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/beyondtyping/beyond/common/environment"
	"github.com/beyondtyping/beyond/common/logging"
	"github.com/beyondtyping/beyond/common/version"
)

type rootOptions struct {
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "beyond",
		Short:         "Hands-free command assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(opts.logLevel, opts.logFormat)
		},
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", environment.StringOr("LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", environment.StringOr("LOG_FORMAT", "text"), "log format (text, json)")

	root.AddCommand(newRunCmd(), newTrainCmd(), newClassifyCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
