package monitor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/churchmap/watchdog/internal/config"
	"github.com/churchmap/watchdog/internal/oplog"
	"github.com/churchmap/watchdog/internal/supervisor"
)

func newRestarter(t *testing.T, sup *supervisor.Fake) (*Restarter, string) {
	t.Helper()
	opsPath := filepath.Join(t.TempDir(), "monitor.log")
	return &Restarter{
		Log:      zap.NewNop(),
		Ops:      oplog.New(opsPath),
		Cfg:      config.RestartCfg{SettleDelay: time.Millisecond, PollAttempts: 3},
		Services: config.ServicesCfg{App: "churchmap", Proxy: "nginx"},
		Sup:      sup,
	}, opsPath
}

func TestRestarter_BothComeBack(t *testing.T) {
	sup := supervisor.NewFake() // RestartHeals: restart/reload mark units active
	r, _ := newRestarter(t, sup)

	require.True(t, r.Run(context.Background()))
	require.Equal(t, []string{"churchmap"}, sup.Restarts)
	require.Equal(t, []string{"nginx"}, sup.Reloads)
}

func TestRestarter_AppStaysDown(t *testing.T) {
	sup := supervisor.NewFake()
	sup.RestartHeals = false
	sup.Active["nginx"] = true // proxy fine, app never recovers
	r, opsPath := newRestarter(t, sup)

	require.False(t, r.Run(context.Background()))

	b, err := os.ReadFile(opsPath)
	require.NoError(t, err)
	require.Contains(t, string(b), "✗ Service restart failed")
}

func TestRestarter_ProxyStaysDown(t *testing.T) {
	sup := supervisor.NewFake()
	sup.RestartHeals = false
	sup.Active["churchmap"] = true
	r, _ := newRestarter(t, sup)

	require.False(t, r.Run(context.Background()))
}

func TestRestarter_CanceledContext(t *testing.T) {
	sup := supervisor.NewFake()
	sup.RestartHeals = false
	r, _ := newRestarter(t, sup)
	r.Cfg.SettleDelay = time.Hour // would block without cancellation

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.False(t, r.Run(ctx))
}
