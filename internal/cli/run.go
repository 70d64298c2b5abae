package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/churchmap/watchdog/internal/monitor"
	"github.com/churchmap/watchdog/internal/obs"
)

// run is the daemon alternative to cron: a ticker-driven pass loop with a
// metrics endpoint. The in-process ticker also makes the scheduled backup
// hour reliable, since at least one pass lands in every hour.
func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the monitoring loop continuously with a /metrics endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.log.Sync() }()

			ctx := cmd.Context()
			a.log.Info("starting watchdog",
				zap.Duration("interval", a.cfg.Monitor.Interval),
				zap.String("metrics_addr", a.cfg.Monitor.MetricsAddr),
			)

			otelCloser, err := obs.SetupOTel(ctx, &obs.OTELConfig{
				Enable:      a.cfg.OTEL.Enable,
				Endpoint:    a.cfg.OTEL.Endpoint,
				ServiceName: "watchdog",
				SampleRatio: a.cfg.OTEL.SampleRatio,
			})
			if err != nil {
				return err
			}
			defer func() { _ = otelCloser.Shutdown(context.Background()) }()

			store := a.openHistory()
			defer func() { _ = store.Close() }()

			ms := obs.BootstrapMetricsServer(a.cfg.Monitor.MetricsAddr, func(context.Context) error {
				return nil
			}, a.log)

			runner := &monitor.Runner{
				Log:      a.log,
				Orch:     a.orchestrator(store),
				Interval: a.cfg.Monitor.Interval,
				LockPath: a.cfg.Monitor.LockFile,
			}

			err = runner.Run(ctx)

			shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = ms.Shutdown(shCtx)
			a.log.Info("bye")

			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
