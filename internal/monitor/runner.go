package monitor

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/churchmap/watchdog/internal/lockfile"
)

// Runner is the long-running alternative to cron: one pass per tick, with
// the same advisory lock a cron-invoked pass takes, so both modes can
// coexist during a migration without racing.
type Runner struct {
	Log      *zap.Logger
	Orch     *Orchestrator
	Interval time.Duration
	LockPath string
}

func (r *Runner) tick(ctx context.Context) {
	lock, err := lockfile.Acquire(r.LockPath)
	if err != nil {
		mSkipped.Inc()
		if errors.Is(err, lockfile.ErrHeld) {
			r.Log.Warn("previous pass still running, skipping tick")
		} else {
			r.Log.Warn("lock acquisition failed, skipping tick", zap.Error(err))
		}
		return
	}
	defer func() {
		if err := lock.Release(); err != nil {
			r.Log.Warn("lock release", zap.Error(err))
		}
	}()

	r.Orch.RunPass(ctx)
}

func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	r.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}
