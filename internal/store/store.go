package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"ocwsync/internal/config"
)

// Dialect identifies the SQL flavour behind a Store.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Store persists courses and the sections, resources, and problems derived
// from them. It is backed by SQLite by default or Postgres through pgx.
type Store struct {
	db      *sql.DB
	dialect Dialect
	target  string
	now     func() time.Time
}

const (
	sqliteBusyCode          = 5
	retryAttempts           = 5
	retryInitialBackoff     = 10 * time.Millisecond
	retryMaxBackoff         = 200 * time.Millisecond
	pgSerializationFailure  = "40001"
	pgDeadlockDetected      = "40P01"
	sqliteDriverName        = "sqlite"
	postgresDriverName      = "pgx"
	sqliteBusyTimeoutMillis = 5000
)

// Open connects to the configured backend and applies pending migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		return OpenPostgres(cfg.Store.DSN)
	default:
		return OpenSQLite(cfg.Store.Path)
	}
}

// OpenSQLite opens (creating if needed) a SQLite database file.
func OpenSQLite(path string) (*Store, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection keeps PRAGMAs and transactions on the same handle.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = " + strconv.Itoa(sqliteBusyTimeoutMillis),
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	return finishOpen(db, DialectSQLite, path)
}

// OpenPostgres connects to Postgres using a pgx DSN.
func OpenPostgres(dsn string) (*Store, error) {
	db, err := sql.Open(postgresDriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres db: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return finishOpen(db, DialectPostgres, redactDSN(dsn))
}

func finishOpen(db *sql.DB, dialect Dialect, target string) (*Store, error) {
	s := &Store{db: db, dialect: dialect, target: target, now: func() time.Time { return time.Now().UTC() }}
	if err := s.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Dialect reports the active backend.
func (s *Store) Dialect() Dialect { return s.dialect }

// Target describes the database location with credentials removed.
func (s *Store) Target() string { return s.target }

// Ping verifies the connection is usable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code()&0xff == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// retryOnBusy reruns op while the backend reports lock contention.
func retryOnBusy(ctx context.Context, op func() error) error {
	delay := retryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) || attempt == retryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= retryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// inTx runs fn inside a transaction, retrying the whole unit on contention.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	})
}

func redactDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	return dsn[:scheme+3] + "***" + dsn[at:]
}
