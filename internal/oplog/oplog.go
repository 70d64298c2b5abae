// Package oplog is the flat operations log read by humans over SSH. One line
// per event, "YYYY-MM-DD HH:MM:SS - message", append-only. Rotation belongs
// to logrotate, not to this package.
package oplog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const stampLayout = "2006-01-02 15:04:05"

type Log struct {
	path string
	now  func() time.Time

	mu sync.Mutex
}

func New(path string) *Log {
	return &Log{path: path, now: time.Now}
}

// NewWithClock exists for tests that need deterministic timestamps.
func NewWithClock(path string, now func() time.Time) *Log {
	return &Log{path: path, now: now}
}

// Append writes one timestamped line. Write failures are swallowed: the log
// must never take a monitoring pass down with it (a full disk is exactly the
// condition the pass is busy reporting).
func (l *Log) Append(format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintf(f, "%s - %s\n", l.now().Format(stampLayout), msg)
}

func (l *Log) Path() string { return l.path }
