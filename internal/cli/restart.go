package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

func newRestartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Restart the app service, reload the proxy, and verify both come back",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.log.Sync() }()

			if !a.restarter.Run(cmd.Context()) {
				return errors.New("services did not come back after restart")
			}
			return nil
		},
	}
}
