// Package sqlstore implements the repository interfaces on database/sql.
//
// One code path serves two engines:
//
//	sqlite://...    modernc.org/sqlite (pure Go, default, used by tests)
//	postgres://...  jackc/pgx/v5 through its database/sql adapter
//
// Queries are written once with "?" placeholders and rebound to "$1, $2, ..."
// for PostgreSQL. Upserts use INSERT ... ON CONFLICT, which both engines
// support with the same syntax, so concurrent first writes to the same
// natural key can never produce duplicate rows.
//
// SESSIONS:
// Store methods run directly on the pool. WithTx hands the callback a
// Repos bound to a single *sql.Tx; everything done through it commits or
// rolls back together. Inside the callback, use only the Repos it receives:
// an in-memory SQLite store has exactly one connection, and calling back
// into the Store would wait for it forever.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver

	"github.com/sakif/mediaplay-sync/internal/config"
	"github.com/sakif/mediaplay-sync/internal/repository"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

func (d dialect) String() string {
	if d == dialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

// rebind rewrites "?" placeholders to "$n" for PostgreSQL. Queries in this
// package never contain a literal question mark.
func (d dialect) rebind(query string) string {
	if d != dialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// querier is the subset of *sql.DB and *sql.Tx the repositories need.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements repository.Repos on top of a pool or a transaction.
type queries struct {
	q   querier
	d   dialect
	now func() time.Time
}

var _ repository.Repos = (*queries)(nil)

func (x *queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return x.q.ExecContext(ctx, x.d.rebind(query), args...)
}

func (x *queries) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return x.q.QueryContext(ctx, x.d.rebind(query), args...)
}

func (x *queries) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return x.q.QueryRowContext(ctx, x.d.rebind(query), args...)
}

// timestamp is the value written to created_at/updated_at/last_played.
// Microsecond precision matches what PostgreSQL keeps.
func (x *queries) timestamp() time.Time {
	return x.now().UTC().Truncate(time.Microsecond)
}

// Store is the SQL entity store.
type Store struct {
	*queries
	db *sql.DB
}

var _ repository.Store = (*Store)(nil)

// Open connects, configures the pool and runs migrations.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	driver, dsn, err := cfg.Driver()
	if err != nil {
		return nil, err
	}

	var (
		d      dialect
		memory bool
	)
	switch driver {
	case config.DriverPostgres:
		d = dialectPostgres
	default:
		d = dialectSQLite
		memory = dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: opening %s database: %w", d, err)
	}

	if memory {
		// Every SQLite connection to :memory: is a separate database, so the
		// pool is pinned to one connection that is never recycled.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	} else {
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore: pinging %s database: %w", d, err)
	}

	s := newStore(db, d)
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore: running migrations: %w", err)
	}
	return s, nil
}

func newStore(db *sql.DB, d dialect) *Store {
	return &Store{
		queries: &queries{q: db, d: d, now: time.Now},
		db:      db,
	}
}

// sqliteDSN appends per-connection pragmas. modernc applies each _pragma on
// every new connection, so foreign keys are enforced pool-wide.
func sqliteDSN(path string) string {
	params := []string{
		"_pragma=foreign_keys(1)",
		"_pragma=busy_timeout(5000)",
		"_txlock=immediate",
		"_time_format=sqlite",
	}
	if path != ":memory:" {
		params = append(params, "_pragma=journal_mode(WAL)")
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}

// Dialect reports "sqlite" or "postgres".
func (s *Store) Dialect() string {
	return s.d.String()
}

func (s *Store) Ping(ctx context.Context) error {
	var one int
	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("sqlstore: ping: %w", err)
	}
	return nil
}

// Close closes the connection pool. Call it once, on shutdown.
func (s *Store) Close() error {
	return s.db.Close()
}

// WithTx runs fn in one transaction: commit on nil, rollback on error or
// panic. The connection goes back to the pool on every path.
func (s *Store) WithTx(ctx context.Context, fn func(r repository.Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlstore: beginning transaction: %w", err)
	}

	done := false
	defer func() {
		if !done {
			_ = tx.Rollback()
		}
	}()

	if err := fn(&queries{q: tx, d: s.d, now: s.now}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("sqlstore: rolling back: %w", rbErr))
		}
		done = true
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlstore: committing transaction: %w", err)
	}
	done = true
	return nil
}
