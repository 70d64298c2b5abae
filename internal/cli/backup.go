package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/churchmap/watchdog/internal/history"
	"github.com/churchmap/watchdog/internal/lockfile"
)

func newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Back up the database now and prune expired backups",
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
					return fmt.Errorf("backup skipped: %w", err)
				}
				return err
			}
			defer func() { _ = lock.Release() }()

			rec, err := a.backup.Run(cmd.Context())
			if err != nil {
				return err
			}

			store := a.openHistory()
			defer func() { _ = store.Close() }()
			_ = store.RecordBackup(cmd.Context(), history.BackupRecord{
				CreatedAt: rec.CreatedAt,
				Path:      rec.Path,
				Size:      rec.Size,
				Pruned:    rec.Pruned,
			})
			return nil
		},
	}
}
