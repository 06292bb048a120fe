// Package eventlog persists token-cache diagnostics (hits, misses, corrupt
// files, fetch and persist failures) in a small SQLite database so operators
// can see why the gateway went to the token endpoint. Token values and
// client secrets are never stored.
package eventlog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // register the "sqlite" driver
)

// Kind classifies a token-cache event.
type Kind string

// Event kinds.
const (
	CacheHit      Kind = "cache_hit"
	CacheMiss     Kind = "cache_miss"
	CacheExpired  Kind = "cache_expired"
	CacheCorrupt  Kind = "cache_corrupt"
	CacheIOError  Kind = "cache_io_error"
	FetchOK       Kind = "fetch_ok"
	FetchFailed   Kind = "fetch_failed"
	PersistFailed Kind = "persist_failed"
)

// Event is one recorded occurrence.
type Event struct {
	ID         int64
	OccurredAt time.Time
	Kind       Kind
	CachePath  string
	Detail     string
}

const (
	sqlInsertEvent = `INSERT INTO token_events (occurred_at, kind, cache_path, detail)
		VALUES (?, ?, ?, ?)`

	sqlRecentEvents = `SELECT id, occurred_at, kind, cache_path, detail
		FROM token_events ORDER BY occurred_at DESC, id DESC LIMIT ?`

	sqlCountByKind = `SELECT kind, COUNT(*) FROM token_events GROUP BY kind`

	sqlPruneEvents = `DELETE FROM token_events WHERE occurred_at < ?`
)

// hoursPerDay converts retention days to a duration.
const hoursPerDay = 24

// Log is the sole writer to the events database.
type Log struct {
	db      *sql.DB
	logger  *slog.Logger
	nowFunc func() time.Time
}

// Open opens (creating if needed) the events database at dbPath and applies
// pending migrations.
func Open(ctx context.Context, dbPath string, logger *slog.Logger) (*Log, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)",
		dbPath,
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("eventlog: opening database %s: %w", dbPath, err)
	}

	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("event log opened", slog.String("db_path", dbPath))

	return &Log{db: db, logger: logger, nowFunc: time.Now}, nil
}

// Record appends an event. OccurredAt defaults to now.
func (l *Log) Record(ctx context.Context, ev Event) error {
	at := ev.OccurredAt
	if at.IsZero() {
		at = l.nowFunc()
	}

	if _, err := l.db.ExecContext(ctx, sqlInsertEvent, at.UnixNano(), string(ev.Kind), ev.CachePath, ev.Detail); err != nil {
		return fmt.Errorf("eventlog: recording %s: %w", ev.Kind, err)
	}

	return nil
}

// Recent returns up to limit events, newest first.
func (l *Log) Recent(ctx context.Context, limit int) ([]Event, error) {
	rows, err := l.db.QueryContext(ctx, sqlRecentEvents, limit)
	if err != nil {
		return nil, fmt.Errorf("eventlog: querying events: %w", err)
	}
	defer rows.Close()

	var events []Event

	for rows.Next() {
		var (
			ev   Event
			at   int64
			kind string
		)

		if err := rows.Scan(&ev.ID, &at, &kind, &ev.CachePath, &ev.Detail); err != nil {
			return nil, fmt.Errorf("eventlog: scanning event: %w", err)
		}

		ev.OccurredAt = time.Unix(0, at)
		ev.Kind = Kind(kind)
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("eventlog: iterating events: %w", err)
	}

	return events, nil
}

// Counts returns the number of recorded events per kind.
func (l *Log) Counts(ctx context.Context) (map[Kind]int, error) {
	rows, err := l.db.QueryContext(ctx, sqlCountByKind)
	if err != nil {
		return nil, fmt.Errorf("eventlog: counting events: %w", err)
	}
	defer rows.Close()

	counts := make(map[Kind]int)

	for rows.Next() {
		var (
			kind string
			n    int
		)

		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("eventlog: scanning count: %w", err)
		}

		counts[Kind(kind)] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("eventlog: iterating counts: %w", err)
	}

	return counts, nil
}

// Prune deletes events older than retentionDays and returns how many rows
// went. retentionDays <= 0 keeps everything.
func (l *Log) Prune(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := l.nowFunc().Add(-time.Duration(retentionDays) * hoursPerDay * time.Hour).UnixNano()

	result, err := l.db.ExecContext(ctx, sqlPruneEvents, cutoff)
	if err != nil {
		return 0, fmt.Errorf("eventlog: pruning events: %w", err)
	}

	affected, rowsErr := result.RowsAffected()
	if rowsErr != nil {
		l.logger.Warn("could not read rows affected", slog.String("error", rowsErr.Error()))
	}

	l.logger.Debug("pruned token events",
		slog.Int("retention_days", retentionDays),
		slog.Int64("deleted", affected),
	)

	return affected, nil
}

// Close closes the database.
func (l *Log) Close() error {
	return l.db.Close()
}
