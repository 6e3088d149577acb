package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/arthurhrk/Shapeslibrary/internal/logging"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current journal schema version. Bump on schema
// changes; the journal is history, so a mismatched database is simply
// recreated rather than migrated.
const schemaVersion = 1

// Operation names recorded in events.
const (
	OpCapture = "capture"
	OpInsert  = "insert"
	OpOpen    = "open"
	OpUpdate  = "update"
	OpMove    = "move"
	OpRemove  = "remove"
	OpPreview = "preview"
	OpRepair  = "repair"
	OpRebuild = "deck_rebuild"
)

// Event is one recorded library operation.
type Event struct {
	ID         int64
	OccurredAt time.Time
	Op         string
	ShapeID    string
	Category   string
	Detail     string
	RequestID  string
}

// Journal persists operation events to SQLite.
type Journal struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the journal database at path. A database
// carrying an unexpected schema version is moved aside and recreated empty:
// losing history is preferable to blocking every command.
func Open(path string, logger *slog.Logger) (*Journal, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "journal")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := openDB(path)
	if err != nil {
		return nil, err
	}

	j := &Journal{db: db, path: path, logger: logger}
	if err := j.initSchema(context.Background()); err != nil {
		_ = db.Close()
		if !errors.Is(err, errSchemaMismatch) {
			return nil, err
		}
		logger.Warn("journal schema is from another version",
			logging.String(logging.FieldEventType, "journal_schema_mismatch"),
			logging.String("path", path),
			logging.String(logging.FieldErrorHint, "the old database is kept beside the new one with a .old suffix"),
			logging.String(logging.FieldImpact, "operation history restarts empty"))
		if err := os.Rename(path, path+".old"); err != nil {
			return nil, fmt.Errorf("set aside mismatched journal: %w", err)
		}
		db, err = openDB(path)
		if err != nil {
			return nil, err
		}
		j = &Journal{db: db, path: path, logger: logger}
		if err := j.initSchema(context.Background()); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return j, nil
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	return db, nil
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Path returns the journal database location.
func (j *Journal) Path() string {
	if j == nil {
		return ""
	}
	return j.path
}

var errSchemaMismatch = errors.New("journal schema version mismatch")

func (j *Journal) initSchema(ctx context.Context) error {
	var tableExists int
	err := j.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return j.createSchema(ctx)
	}

	var version int
	if err := j.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d", errSchemaMismatch, version, schemaVersion)
	}
	return nil
}

func (j *Journal) createSchema(ctx context.Context) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Record appends one event. OccurredAt defaults to now when unset.
func (j *Journal) Record(ctx context.Context, ev Event) error {
	ev.Op = strings.TrimSpace(ev.Op)
	if ev.Op == "" {
		return errors.New("journal: event operation required")
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	return j.execWithRetry(ctx,
		`INSERT INTO events (occurred_at, operation, shape_id, category, detail, request_id)
         VALUES (?, ?, ?, ?, ?, ?)`,
		ev.OccurredAt.UTC().Format(time.RFC3339Nano),
		ev.Op,
		ev.ShapeID,
		ev.Category,
		ev.Detail,
		ev.RequestID,
	)
}

// RecordBestEffort appends an event, reducing any failure to a WARN. The
// journal is an observability aid; the operation it describes already
// happened.
func (j *Journal) RecordBestEffort(ctx context.Context, ev Event) {
	if j == nil {
		return
	}
	if err := j.Record(ctx, ev); err != nil {
		j.logger.Warn("failed to record journal event",
			logging.String(logging.FieldEventType, "journal_write_failed"),
			logging.String(logging.FieldOperation, ev.Op),
			logging.String(logging.FieldShapeID, ev.ShapeID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the journal database under the library root"),
			logging.String(logging.FieldImpact, "this operation is missing from history"))
	}
}

// Recent returns the newest events, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, occurred_at, operation, shape_id, category, detail, request_id
         FROM events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// RecentShapes returns distinct shape ids ordered by most recent use. Feeds
// the recently-used listing order.
func (j *Journal) RecentShapes(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT shape_id, MAX(id) AS last_id FROM events
         WHERE shape_id != '' GROUP BY shape_id ORDER BY last_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent shapes: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0, limit)
	for rows.Next() {
		var id string
		var lastID int64
		if err := rows.Scan(&id, &lastID); err != nil {
			return nil, fmt.Errorf("scan recent shape: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Prune deletes events older than keepDays and reports how many were
// removed. keepDays <= 0 keeps everything.
func (j *Journal) Prune(ctx context.Context, keepDays int) (int64, error) {
	if keepDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -keepDays).Format(time.RFC3339Nano)
	var removed int64
	err := retryOnBusy(ensureContext(ctx), func() error {
		res, execErr := j.db.ExecContext(ctx, "DELETE FROM events WHERE occurred_at < ?", cutoff)
		if execErr != nil {
			return execErr
		}
		removed, _ = res.RowsAffected()
		return nil
	})
	return removed, err
}

// Count reports the number of stored events.
func (j *Journal) Count(ctx context.Context) (int, error) {
	var count int
	if err := j.db.QueryRowContext(ensureContext(ctx), "SELECT COUNT(1) FROM events").Scan(&count); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var ev Event
		var occurredAt string
		if err := rows.Scan(&ev.ID, &occurredAt, &ev.Op, &ev.ShapeID, &ev.Category, &ev.Detail, &ev.RequestID); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, occurredAt); err == nil {
			ev.OccurredAt = ts
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (j *Journal) execWithRetry(ctx context.Context, query string, args ...any) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := j.db.ExecContext(ctx, query, args...)
		return err
	})
}
