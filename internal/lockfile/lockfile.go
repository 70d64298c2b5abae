// Package lockfile provides the advisory lock that keeps overlapping
// scheduled invocations from racing each other. Cooperative only: everything
// that mutates the backup directory or restarts services must acquire it
// first.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// ErrHeld is returned when a live process already holds the lock.
var ErrHeld = errors.New("lock held by another process")

type Lock struct {
	path string
}

// Acquire takes the pidfile lock at path. If the file exists but its owner
// is gone (crashed pass, reboot with a stale /tmp), the stale file is
// removed and acquisition retried once.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("lock dir: %w", err)
	}
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_, werr := fmt.Fprintf(f, "%d\n", os.Getpid())
			if cerr := f.Close(); werr == nil {
				werr = cerr
			}
			if werr != nil {
				_ = os.Remove(path)
				return nil, fmt.Errorf("write lock: %w", werr)
			}
			return &Lock{path: path}, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create lock: %w", err)
		}
		if attempt == 0 && ownerDead(path) {
			_ = os.Remove(path)
			continue
		}
		return nil, fmt.Errorf("%w: %s", ErrHeld, path)
	}
	return nil, fmt.Errorf("%w: %s", ErrHeld, path)
}

// Release removes the lock file. Safe on all exit paths; a missing file is
// not an error.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func ownerDead(path string) bool {
	b, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil || pid <= 0 {
		// unreadable owner: treat as stale
		return true
	}
	if pid == os.Getpid() {
		return false
	}
	// signal 0 probes existence without delivering anything; EPERM still
	// means the process is there
	return errors.Is(syscall.Kill(pid, 0), syscall.ESRCH)
}
