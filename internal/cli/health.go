package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe the application endpoint; exit 0 iff it answers HTTP 200",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.log.Sync() }()

			res := a.checker.AppHealth(cmd.Context())
			if !res.Passed {
				return errors.New("application unhealthy: " + res.Detail)
			}
			return nil
		},
	}
}
