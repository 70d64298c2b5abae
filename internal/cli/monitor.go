package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/churchmap/watchdog/internal/lockfile"
)

func newMonitorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Run one full monitoring pass (checks, scheduled backup, remediation)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.log.Sync() }()

			lock, err := lockfile.Acquire(a.cfg.Monitor.LockFile)
			if err != nil {
				if errors.Is(err, lockfile.ErrHeld) {
					// a previous scheduled pass is still running; exit
					// quietly instead of duplicating its work
					a.log.Warn("another pass holds the lock, exiting")
					return nil
				}
				return err
			}
			defer func() { _ = lock.Release() }()

			store := a.openHistory()
			defer func() { _ = store.Close() }()

			sum := a.orchestrator(store).RunPass(cmd.Context())
			a.log.Info("monitor pass done", zap.Int("issues", sum.Issues))
			// issues are logged and remediated, never an exit failure
			return nil
		},
	}
}
