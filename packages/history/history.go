// Package history stores capture runs in a local SQLite database so past
// batches can be listed and compared after the host session is gone.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/shaurasan/SnapShotTool/packages/runner"
)

// DefaultPath is where capture runs are recorded when no path is
// configured.
const DefaultPath = ".takesnap/history.db"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	recorded_at TIMESTAMP NOT NULL,
	duration_ms INTEGER NOT NULL,
	panels      INTEGER NOT NULL,
	passed      INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	width       INTEGER NOT NULL,
	height      INTEGER NOT NULL,
	filter      TEXT NOT NULL,
	mode        TEXT NOT NULL,
	dir         TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS captures (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      INTEGER NOT NULL,
	panel       TEXT NOT NULL,
	camera      TEXT NOT NULL,
	path        TEXT NOT NULL,
	frame       INTEGER NOT NULL,
	bytes       INTEGER NOT NULL,
	passed      INTEGER NOT NULL,
	failure     TEXT NOT NULL,
	duration_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_captures_run ON captures(run_id);
`

// Run is one recorded batch.
type Run struct {
	ID         int64
	RecordedAt time.Time
	Duration   time.Duration
	Panels     int
	Passed     int
	Failed     int
	Width      int
	Height     int
	Filter     string
	Mode       string
	Dir        string
}

// Capture is one panel outcome within a run. Failure is empty when the
// capture passed.
type Capture struct {
	RunID    int64
	Panel    string
	Camera   string
	Path     string
	Frame    int
	Bytes    int64
	Passed   bool
	Failure  string
	Duration time.Duration
}

// Store is a capture history database.
type Store struct {
	db           *sql.DB
	path         string
	queryTimeout time.Duration
	log          *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Open opens the history database at path, creating the file, its parent
// directory and the schema as needed.
func Open(path string, opts ...Option) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	s := &Store{
		db:           db,
		path:         path,
		queryTimeout: 30 * time.Second,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the database file the store was opened on.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordBatch stores one finished batch and its per-panel outcomes. The new
// run's id is returned.
func (s *Store) RecordBatch(batch runner.Batch, result *runner.BatchResult) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.queryTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (recorded_at, duration_ms, panels, passed, failed, width, height, filter, mode, dir)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC(), result.Duration.Milliseconds(), len(batch.Panels),
		result.Passed, result.Failed, batch.Width, batch.Height,
		string(batch.Filter), string(batch.Mode), batch.Dir)
	if err != nil {
		return 0, fmt.Errorf("failed to record run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	for _, c := range result.Results {
		failure := c.Failure
		if c.Error != nil {
			failure = c.Error.Error()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO captures (run_id, panel, camera, path, frame, bytes, passed, failure, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, c.Panel, c.Camera, c.Path, c.Frame, c.Bytes,
			c.Passed, failure, c.Duration.Milliseconds())
		if err != nil {
			return 0, fmt.Errorf("failed to record capture for panel %s: %w", c.Panel, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	s.log.Debug("batch recorded", "run", runID, "panels", len(result.Results))
	return runID, nil
}

// Runs returns the most recent runs, newest first. A limit below one uses
// the default of 20.
func (s *Store) Runs(limit int) ([]Run, error) {
	if limit < 1 {
		limit = 20
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, recorded_at, duration_ms, panels, passed, failed, width, height, filter, mode, dir
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var durationMs int64
		if err := rows.Scan(&r.ID, &r.RecordedAt, &durationMs, &r.Panels, &r.Passed,
			&r.Failed, &r.Width, &r.Height, &r.Filter, &r.Mode, &r.Dir); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return runs, nil
}

// Captures returns the per-panel outcomes of one run in capture order.
func (s *Store) Captures(runID int64) ([]Capture, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, panel, camera, path, frame, bytes, passed, failure, duration_ms
		FROM captures WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list captures: %w", err)
	}
	defer rows.Close()

	var captures []Capture
	for rows.Next() {
		var c Capture
		var durationMs int64
		if err := rows.Scan(&c.RunID, &c.Panel, &c.Camera, &c.Path, &c.Frame,
			&c.Bytes, &c.Passed, &c.Failure, &durationMs); err != nil {
			return nil, fmt.Errorf("failed to scan capture: %w", err)
		}
		c.Duration = time.Duration(durationMs) * time.Millisecond
		captures = append(captures, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return captures, nil
}

// Prune deletes all but the newest keep runs and their captures, returning
// the number of runs removed.
func (s *Store) Prune(keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.queryTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// The driver leaves foreign keys off, so captures are cleared
	// explicitly.
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM captures WHERE run_id NOT IN
		(SELECT id FROM runs ORDER BY id DESC LIMIT ?)`, keep); err != nil {
		return 0, fmt.Errorf("failed to prune captures: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		DELETE FROM runs WHERE id NOT IN
		(SELECT id FROM runs ORDER BY id DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned runs: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit prune: %w", err)
	}

	s.log.Debug("history pruned", "kept", keep, "removed", removed)
	return removed, nil
}
