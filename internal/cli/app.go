package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/churchmap/watchdog/internal/backup"
	"github.com/churchmap/watchdog/internal/checks"
	"github.com/churchmap/watchdog/internal/config"
	"github.com/churchmap/watchdog/internal/history"
	"github.com/churchmap/watchdog/internal/monitor"
	"github.com/churchmap/watchdog/internal/obs"
	"github.com/churchmap/watchdog/internal/oplog"
	"github.com/churchmap/watchdog/internal/supervisor"
	"github.com/churchmap/watchdog/internal/sysmon"
)

// app is the wired object graph every sub-command starts from.
type app struct {
	cfg       *config.Config
	log       *zap.Logger
	ops       *oplog.Log
	checker   *checks.Checker
	backup    *backup.Manager
	restarter *monitor.Restarter
}

func buildApp(cmd *cobra.Command) (*app, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	log, err := obs.NewLogger(obs.LogConfig{
		Level:   cfg.Log.Level,
		Pretty:  cfg.Log.Pretty,
		Service: "watchdog",
		Version: version,
	})
	if err != nil {
		return nil, err
	}

	ops := oplog.New(cfg.Log.OpsFile)
	sup := supervisor.Systemctl{}

	checker := &checks.Checker{
		Log:  log,
		Ops:  ops,
		Cfg:  cfg.Checks,
		Sup:  sup,
		Disk: sysmon.StatfsDisk{},
		Mem:  sysmon.ProcMeminfo{},
		HTTP: checks.NewHTTPClient(cfg.Checks.HealthTimeout),
	}

	return &app{
		cfg:     cfg,
		log:     log,
		ops:     ops,
		checker: checker,
		backup:  backup.NewManager(log, ops, cfg.Backup),
		restarter: &monitor.Restarter{
			Log:      log,
			Ops:      ops,
			Cfg:      cfg.Restart,
			Services: cfg.Services,
			Sup:      sup,
		},
	}, nil
}

func (a *app) orchestrator(store *history.Store) *monitor.Orchestrator {
	return &monitor.Orchestrator{
		Log:       a.log,
		Ops:       a.ops,
		Cfg:       a.cfg,
		Checks:    a.checker,
		Backup:    a.backup,
		Restarter: a.restarter,
		History:   store,
	}
}

// openHistory is best-effort: a missing or unwritable history database must
// never stop a pass.
func (a *app) openHistory() *history.Store {
	store, err := history.Open(a.cfg.History.Path)
	if err != nil {
		a.log.Warn("history store unavailable", zap.Error(err))
		return nil
	}
	return store
}
