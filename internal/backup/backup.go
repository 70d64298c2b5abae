// Package backup copies the primary database to a timestamped file and
// prunes copies older than the retention window. The timestamp layout keeps
// names lexically sortable by creation time, so pruning never has to parse
// anything out of a filename.
package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/churchmap/watchdog/internal/config"
	"github.com/churchmap/watchdog/internal/oplog"
)

const (
	prefix      = "db_backup_"
	stampLayout = "20060102_150405"
)

var (
	mRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "watchdog_backup_runs_total", Help: "Backup attempts.",
	})
	mFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "watchdog_backup_failures_total", Help: "Backup attempts that did not produce a verified copy.",
	})
	mPruned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "watchdog_backup_pruned_total", Help: "Expired backup files removed.",
	})
)

// Record describes one completed backup.
type Record struct {
	Path      string
	Size      int64
	Pruned    int
	CreatedAt time.Time
}

type Manager struct {
	Log *zap.Logger
	Ops *oplog.Log
	Cfg config.BackupCfg
	Now func() time.Time
}

func NewManager(log *zap.Logger, ops *oplog.Log, cfg config.BackupCfg) *Manager {
	return &Manager{Log: log, Ops: ops, Cfg: cfg, Now: time.Now}
}

// Run copies the source database into the backup directory and, only after
// the copy is verified, prunes expired predecessors. A failed copy leaves
// every older backup in place: the last good set must survive a bad night.
func (m *Manager) Run(ctx context.Context) (Record, error) {
	mRuns.Inc()

	now := m.Now()
	dest := filepath.Join(m.Cfg.Dir, prefix+now.Format(stampLayout)+filepath.Ext(m.Cfg.Source))
	size, err := m.copyVerified(ctx, m.Cfg.Source, dest)
	if err != nil {
		mFailures.Inc()
		m.Log.Error("backup failed", zap.String("dest", dest), zap.Error(err))
		m.Ops.Append("✗ Backup failed: %v", err)
		return Record{}, err
	}

	pruned := m.prune(dest)
	m.Log.Info("backup complete",
		zap.String("dest", dest),
		zap.Int64("bytes", size),
		zap.Int("pruned", pruned),
	)
	m.Ops.Append("✓ Database backed up to %s (%d bytes, %d expired removed)", dest, size, pruned)
	return Record{Path: dest, Size: size, Pruned: pruned, CreatedAt: now}, nil
}

func (m *Manager) copyVerified(ctx context.Context, src, dest string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	srcInfo, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat source: %w", err)
	}

	if err := os.MkdirAll(m.Cfg.Dir, 0o755); err != nil {
		return 0, fmt.Errorf("create backup dir: %w", err)
	}

	// O_EXCL: at most one backup file per encoded timestamp, ever.
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return 0, fmt.Errorf("create backup: %w", err)
	}

	written, err := io.Copy(out, in)
	if err == nil {
		err = out.Sync()
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err == nil && written != srcInfo.Size() {
		err = fmt.Errorf("short copy: %d of %d bytes", written, srcInfo.Size())
	}
	if err != nil {
		_ = os.Remove(dest)
		return 0, err
	}
	return written, nil
}

// prune removes matching backup files older than the retention window,
// except the copy just written.
func (m *Manager) prune(keep string) int {
	cutoff := m.Now().Add(-m.Cfg.Retention)
	ext := filepath.Ext(m.Cfg.Source)

	entries, err := os.ReadDir(m.Cfg.Dir)
	if err != nil {
		m.Log.Warn("prune: read backup dir", zap.Error(err))
		return 0
	}

	pruned := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || filepath.Ext(name) != ext {
			continue
		}
		path := filepath.Join(m.Cfg.Dir, name)
		if path == keep {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			m.Log.Warn("prune: remove", zap.String("path", path), zap.Error(err))
			continue
		}
		pruned++
		mPruned.Inc()
	}
	return pruned
}
