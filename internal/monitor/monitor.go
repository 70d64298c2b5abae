// Package monitor drives the health-check-and-remediate pass. Each pass is a
// short, synchronous run to completion: check, count, optionally restart,
// log. No state survives between passes except the ops log, the backup
// directory, and the history store.
package monitor

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/churchmap/watchdog/internal/backup"
	"github.com/churchmap/watchdog/internal/checks"
	"github.com/churchmap/watchdog/internal/config"
	"github.com/churchmap/watchdog/internal/history"
	"github.com/churchmap/watchdog/internal/oplog"
)

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

var (
	mPasses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "watchdog_passes_total", Help: "Monitoring passes completed.",
	})
	mCheckFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "watchdog_check_failures_total", Help: "Failed checks by name.",
	}, []string{"check"})
	mRestarts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "watchdog_restarts_total", Help: "Remediation attempts by outcome.",
	}, []string{"outcome"})
	mPassDur = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "watchdog_pass_duration_seconds", Help: "Monitoring pass duration.",
		Buckets: prometheus.DefBuckets,
	})
	mSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "watchdog_passes_skipped_total", Help: "Passes skipped because the lock was held.",
	})
)

// Summary is what one pass observed and did.
type Summary struct {
	Issues    int
	BackupRan bool
	Restarted bool
	RestartOK bool
}

type Orchestrator struct {
	Log       *zap.Logger
	Ops       *oplog.Log
	Cfg       *config.Config
	Checks    *checks.Checker
	Backup    *backup.Manager
	Restarter *Restarter
	History   *history.Store
	Clock     Clock
}

func (o *Orchestrator) clock() Clock {
	if o.Clock == nil {
		return realClock{}
	}
	return o.Clock
}

// RunPass executes one full monitoring pass. Failing checks are counted and
// remediated, never propagated: the external scheduler must not have to
// branch on our exit code.
func (o *Orchestrator) RunPass(ctx context.Context) Summary {
	start := o.clock().Now()
	tr := otel.Tracer("watchdog.monitor")
	ctx, span := tr.Start(ctx, "monitor.pass")
	defer span.End()

	o.Ops.Append("=== Monitoring pass started ===")

	results := []checks.Result{
		o.Checks.Service(ctx, o.Cfg.Services.App),
		o.Checks.Service(ctx, o.Cfg.Services.Proxy),
		o.Checks.DiskUsage(),
		o.Checks.MemoryUsage(),
		o.Checks.AppHealth(ctx),
	}

	var sum Summary
	for _, res := range results {
		if res.Passed {
			continue
		}
		sum.Issues++
		mCheckFailures.WithLabelValues(res.Name).Inc()
		o.Log.Warn("check failed", zap.String("check", res.Name), zap.String("detail", res.Detail))
	}
	span.SetAttributes(attribute.Int("pass.issues", sum.Issues))

	// The scheduled backup rides along with whichever pass lands in the
	// backup hour. Unconditional: it runs whether or not checks failed.
	if start.Hour() == o.Cfg.Backup.Hour {
		sum.BackupRan = true
		if rec, err := o.Backup.Run(ctx); err == nil {
			o.recordBackup(ctx, rec)
		}
	}

	if sum.Issues > 0 {
		o.Ops.Append("Found %d issue(s), attempting service restart...", sum.Issues)
		sum.Restarted = true
		sum.RestartOK = o.Restarter.Run(ctx)
		if sum.RestartOK {
			mRestarts.WithLabelValues("ok").Inc()
		} else {
			mRestarts.WithLabelValues("failed").Inc()
		}
	}

	o.Ops.Append("=== Monitoring pass complete (%d issue(s)) ===", sum.Issues)

	dur := o.clock().Now().Sub(start)
	mPasses.Inc()
	mPassDur.Observe(dur.Seconds())

	if err := o.History.RecordPass(ctx, history.PassRecord{
		StartedAt: start,
		Duration:  dur,
		Issues:    sum.Issues,
		Restarted: sum.Restarted,
		RestartOK: sum.RestartOK,
	}); err != nil {
		o.Log.Warn("record pass", zap.Error(err))
	}

	o.Log.Info("pass complete",
		zap.Int("issues", sum.Issues),
		zap.Bool("restarted", sum.Restarted),
		zap.Duration("duration", dur),
	)
	return sum
}

func (o *Orchestrator) recordBackup(ctx context.Context, rec backup.Record) {
	if err := o.History.RecordBackup(ctx, history.BackupRecord{
		CreatedAt: rec.CreatedAt,
		Path:      rec.Path,
		Size:      rec.Size,
		Pruned:    rec.Pruned,
	}); err != nil {
		o.Log.Warn("record backup", zap.Error(err))
	}
}
