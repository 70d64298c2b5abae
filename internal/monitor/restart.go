package monitor

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/churchmap/watchdog/internal/config"
	"github.com/churchmap/watchdog/internal/obs/retry"
	"github.com/churchmap/watchdog/internal/oplog"
	"github.com/churchmap/watchdog/internal/supervisor"
)

// Restarter is the single best-effort remediation: restart the application
// unit, reload the proxy, then poll until both report active or the poll
// attempts run out. One attempt per pass, no escalation beyond the log.
type Restarter struct {
	Log      *zap.Logger
	Ops      *oplog.Log
	Cfg      config.RestartCfg
	Services config.ServicesCfg
	Sup      supervisor.Supervisor
}

var errNotSettled = errors.New("services not active yet")

// Run returns true only when both services report active after the settle
// window. Command failures are logged but polling still happens: the unit
// may come back on its own.
func (r *Restarter) Run(ctx context.Context) bool {
	if err := r.Sup.Restart(ctx, r.Services.App); err != nil {
		r.Log.Warn("restart command failed", zap.String("unit", r.Services.App), zap.Error(err))
	}
	if err := r.Sup.Reload(ctx, r.Services.Proxy); err != nil {
		r.Log.Warn("reload command failed", zap.String("unit", r.Services.Proxy), zap.Error(err))
	}

	if !r.wait(ctx, r.Cfg.SettleDelay) {
		return false
	}

	err := retry.Do(ctx, func() error {
		for _, unit := range []string{r.Services.App, r.Services.Proxy} {
			active, err := r.Sup.IsActive(ctx, unit)
			if err != nil {
				return err
			}
			if !active {
				return errNotSettled
			}
		}
		return nil
	}, retry.Policy{
		Name:     "restart_settle",
		Attempts: r.Cfg.PollAttempts,
		Backoff:  retry.Fixed{Interval: r.Cfg.SettleDelay},
	})

	if err != nil {
		r.Log.Error("services did not settle after restart", zap.Error(err))
		r.Ops.Append("✗ Service restart failed")
		return false
	}
	r.Ops.Append("✓ Services restarted successfully")
	return true
}

func (r *Restarter) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
