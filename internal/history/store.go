// Package history keeps a local record of monitoring passes and backups in
// an embedded SQLite database, so "when did it last restart nginx" has a
// better answer than grepping the ops log.
package history

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

type PassRecord struct {
	ID        int64
	StartedAt time.Time
	Duration  time.Duration
	Issues    int
	Restarted bool
	RestartOK bool
}

type BackupRecord struct {
	ID        int64
	CreatedAt time.Time
	Path      string
	Size      int64
	Pruned    int
}

// Store is nil-safe: every method on a nil *Store is a no-op, so callers can
// run without history when the database cannot be opened.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set dialect: %w", err)
	}
	goose.SetLogger(goose.NopLogger())
	if err := goose.Up(db, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) RecordPass(ctx context.Context, p PassRecord) error {
	if s == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO passes (started_at, duration_ms, issues, restarted, restart_ok)
		VALUES (?, ?, ?, ?, ?)`,
		p.StartedAt.UTC().Format(time.RFC3339),
		p.Duration.Milliseconds(),
		p.Issues, boolInt(p.Restarted), boolInt(p.RestartOK),
	)
	if err != nil {
		return fmt.Errorf("insert pass: %w", err)
	}
	return nil
}

func (s *Store) RecordBackup(ctx context.Context, b BackupRecord) error {
	if s == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO backups (created_at, path, size, pruned)
		VALUES (?, ?, ?, ?)`,
		b.CreatedAt.UTC().Format(time.RFC3339), b.Path, b.Size, b.Pruned,
	)
	if err != nil {
		return fmt.Errorf("insert backup: %w", err)
	}
	return nil
}

// RecentPasses returns the newest passes first.
func (s *Store) RecentPasses(ctx context.Context, limit int) ([]PassRecord, error) {
	if s == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, duration_ms, issues, restarted, restart_ok
		FROM passes ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list passes: %w", err)
	}
	defer rows.Close()

	out := make([]PassRecord, 0, limit)
	for rows.Next() {
		var (
			p         PassRecord
			started   string
			durMS     int64
			restarted int
			restartOK int
		)
		if err := rows.Scan(&p.ID, &started, &durMS, &p.Issues, &restarted, &restartOK); err != nil {
			return nil, fmt.Errorf("scan pass: %w", err)
		}
		p.StartedAt, _ = time.Parse(time.RFC3339, started)
		p.Duration = time.Duration(durMS) * time.Millisecond
		p.Restarted = restarted != 0
		p.RestartOK = restartOK != 0
		out = append(out, p)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
