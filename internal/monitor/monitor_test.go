package monitor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/churchmap/watchdog/internal/backup"
	"github.com/churchmap/watchdog/internal/checks"
	"github.com/churchmap/watchdog/internal/config"
	"github.com/churchmap/watchdog/internal/oplog"
	"github.com/churchmap/watchdog/internal/supervisor"
)

type fakeDisk struct{ pct int }

func (f fakeDisk) Usage(string) (int, error) { return f.pct, nil }

type fakeMem struct{ pct int }

func (f fakeMem) Usage() (int, error) { return f.pct, nil }

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type harness struct {
	orch    *Orchestrator
	sup     *supervisor.Fake
	opsPath string
}

func newHarness(t *testing.T, sup *supervisor.Fake, disk, mem int, healthURL string, at time.Time) *harness {
	t.Helper()
	dir := t.TempDir()
	opsPath := filepath.Join(dir, "monitor.log")
	ops := oplog.New(opsPath)

	src := filepath.Join(dir, "db.sqlite3")
	require.NoError(t, os.WriteFile(src, []byte("data"), 0o644))

	cfg := &config.Config{
		Services: config.ServicesCfg{App: "churchmap", Proxy: "nginx"},
		Checks: config.ChecksCfg{
			HealthURL:     healthURL,
			DiskThreshold: 80,
			MemThreshold:  80,
		},
		Backup: config.BackupCfg{
			Source:    src,
			Dir:       filepath.Join(dir, "backups"),
			Retention: 7 * 24 * time.Hour,
			Hour:      2,
		},
		Restart: config.RestartCfg{SettleDelay: time.Millisecond, PollAttempts: 2},
	}

	log := zap.NewNop()
	mgr := backup.NewManager(log, ops, cfg.Backup)
	mgr.Now = func() time.Time { return at }

	orch := &Orchestrator{
		Log: log,
		Ops: ops,
		Cfg: cfg,
		Checks: &checks.Checker{
			Log:  log,
			Ops:  ops,
			Cfg:  cfg.Checks,
			Sup:  sup,
			Disk: fakeDisk{pct: disk},
			Mem:  fakeMem{pct: mem},
			HTTP: checks.NewHTTPClient(time.Second),
		},
		Backup: mgr,
		Restarter: &Restarter{
			Log:      log,
			Ops:      ops,
			Cfg:      cfg.Restart,
			Services: cfg.Services,
			Sup:      sup,
		},
		Clock: fixedClock{t: at},
	}
	return &harness{orch: orch, sup: sup, opsPath: opsPath}
}

func (h *harness) opsLog(t *testing.T) string {
	t.Helper()
	b, err := os.ReadFile(h.opsPath)
	require.NoError(t, err)
	return string(b)
}

func healthyServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func allActiveSup() *supervisor.Fake {
	sup := supervisor.NewFake()
	sup.Active["churchmap"] = true
	sup.Active["nginx"] = true
	return sup
}

func TestRunPass_AllHealthy_NoRestart(t *testing.T) {
	srv := healthyServer(t)
	at := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)
	h := newHarness(t, allActiveSup(), 40, 50, srv.URL, at)

	sum := h.orch.RunPass(context.Background())

	require.Equal(t, 0, sum.Issues)
	require.False(t, sum.Restarted)
	require.Empty(t, h.sup.Restarts, "no failing check, restarter must not run")
	require.Empty(t, h.sup.Reloads)
}

func TestRunPass_OneFailure_RestartsExactlyOnce(t *testing.T) {
	srv := healthyServer(t)
	at := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)
	h := newHarness(t, allActiveSup(), 85, 50, srv.URL, at) // disk over threshold

	sum := h.orch.RunPass(context.Background())

	require.Equal(t, 1, sum.Issues)
	require.True(t, sum.Restarted)
	require.Len(t, h.sup.Restarts, 1, "restarter runs exactly once per pass")
	require.Len(t, h.sup.Reloads, 1)
}

func TestRunPass_HighDisk_EndToEnd(t *testing.T) {
	// disk 85%, memory 50%, both services active, health 200
	srv := healthyServer(t)
	at := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)
	h := newHarness(t, allActiveSup(), 85, 50, srv.URL, at)

	sum := h.orch.RunPass(context.Background())

	require.Equal(t, 1, sum.Issues)
	require.True(t, sum.Restarted)
	require.True(t, sum.RestartOK)
	require.Contains(t, h.opsLog(t), "✓ Services restarted successfully")
}

func TestRunPass_MultipleFailures_StillOneRestart(t *testing.T) {
	srv := healthyServer(t)
	sup := supervisor.NewFake() // both services down, but restart heals them
	at := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)
	h := newHarness(t, sup, 90, 95, srv.URL, at)

	sum := h.orch.RunPass(context.Background())

	require.Equal(t, 4, sum.Issues) // 2 services + disk + memory
	require.Len(t, sup.Restarts, 1)
}

func TestRunPass_BackupHourTriggersBackup(t *testing.T) {
	srv := healthyServer(t)
	at := time.Date(2025, 6, 1, 2, 15, 0, 0, time.UTC)
	h := newHarness(t, allActiveSup(), 40, 50, srv.URL, at)

	sum := h.orch.RunPass(context.Background())

	require.True(t, sum.BackupRan)
	entries, err := os.ReadDir(h.orch.Cfg.Backup.Dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestRunPass_OutsideBackupHour_NoBackup(t *testing.T) {
	srv := healthyServer(t)
	at := time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC)
	h := newHarness(t, allActiveSup(), 40, 50, srv.URL, at)

	sum := h.orch.RunPass(context.Background())

	require.False(t, sum.BackupRan)
	_, err := os.ReadDir(h.orch.Cfg.Backup.Dir)
	require.Error(t, err, "backup dir should not even exist")
}

func TestRunPass_BackupRunsEvenWithIssues(t *testing.T) {
	srv := healthyServer(t)
	at := time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC)
	h := newHarness(t, allActiveSup(), 99, 50, srv.URL, at)

	sum := h.orch.RunPass(context.Background())

	require.True(t, sum.BackupRan, "scheduled backup is independent of the issue count")
	require.True(t, sum.Restarted)
}
