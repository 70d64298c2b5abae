package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordPass_RoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	started := time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC)
	require.NoError(t, s.RecordPass(ctx, PassRecord{
		StartedAt: started,
		Duration:  1500 * time.Millisecond,
		Issues:    2,
		Restarted: true,
		RestartOK: true,
	}))
	require.NoError(t, s.RecordPass(ctx, PassRecord{
		StartedAt: started.Add(5 * time.Minute),
		Duration:  200 * time.Millisecond,
	}))

	got, err := s.RecentPasses(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// newest first
	require.Equal(t, started.Add(5*time.Minute), got[0].StartedAt)
	require.Equal(t, 0, got[0].Issues)
	require.False(t, got[0].Restarted)

	require.Equal(t, started, got[1].StartedAt)
	require.Equal(t, 2, got[1].Issues)
	require.True(t, got[1].Restarted)
	require.True(t, got[1].RestartOK)
	require.Equal(t, 1500*time.Millisecond, got[1].Duration)
}

func TestRecordBackup(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.RecordBackup(context.Background(), BackupRecord{
		CreatedAt: time.Now(),
		Path:      "/srv/churchmap/backups/db_backup_20250601_020000.sqlite3",
		Size:      4096,
		Pruned:    1,
	}))
}

func TestNilStore_IsNoOp(t *testing.T) {
	var s *Store
	ctx := context.Background()

	require.NoError(t, s.RecordPass(ctx, PassRecord{}))
	require.NoError(t, s.RecordBackup(ctx, BackupRecord{}))
	require.NoError(t, s.Close())

	got, err := s.RecentPasses(ctx, 5)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestOpen_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}
