package lockfile

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchdog.lock")

	lock, err := Acquire(path)
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	pid, err := strconv.Atoi(string(b[:len(b)-1]))
	require.NoError(t, err)
	require.Equal(t, os.Getpid(), pid)

	require.NoError(t, lock.Release())
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestAcquire_HeldByLiveProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchdog.lock")

	// our own pid is a live owner
	lock, err := Acquire(path)
	require.NoError(t, err)
	defer func() { _ = lock.Release() }()

	_, err = Acquire(path)
	require.ErrorIs(t, err, ErrHeld)
}

func TestAcquire_StealsStaleLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchdog.lock")
	// garbage owner: unreadable pid counts as stale
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid\n"), 0o644))

	lock, err := Acquire(path)
	require.NoError(t, err)
	require.NoError(t, lock.Release())
}

func TestAcquire_ReacquireAfterRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchdog.lock")

	lock, err := Acquire(path)
	require.NoError(t, err)
	require.NoError(t, lock.Release())

	lock2, err := Acquire(path)
	require.NoError(t, err)
	require.NoError(t, lock2.Release())
}

func TestRelease_NilAndMissingFile(t *testing.T) {
	var nilLock *Lock
	require.NoError(t, nilLock.Release())

	path := filepath.Join(t.TempDir(), "watchdog.lock")
	lock, err := Acquire(path)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))
	require.NoError(t, lock.Release())
}

func TestAcquire_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "watchdog.lock")
	lock, err := Acquire(path)
	require.NoError(t, err)
	require.NoError(t, lock.Release())
}
