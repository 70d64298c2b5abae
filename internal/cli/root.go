// Package cli wires the watchdog sub-commands. Exit behavior is part of the
// contract: monitor always exits 0 (issues are logged and remediated, not
// surfaced), health and restart mirror their boolean result, anything else
// prints usage and exits 1.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// set via -ldflags "-X github.com/churchmap/watchdog/internal/cli.version=..."
var version = "dev"

func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "watchdog",
		Short:         "Monitor, remediate, and back up the churchmap deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return errors.New("a subcommand is required")
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().String("config", "", "path to YAML config file")

	cmd.AddCommand(newMonitorCmd())
	cmd.AddCommand(newBackupCmd())
	cmd.AddCommand(newHealthCmd())
	cmd.AddCommand(newRestartCmd())
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newVersionCmd(stdout))

	return cmd
}

// ExecuteContext runs the CLI with the process stdio and maps errors to
// exit 1. The context carries signal cancellation from main.
func ExecuteContext(ctx context.Context) int {
	root := NewRootCmd(os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the watchdog version",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintln(stdout, version)
		},
	}
}
