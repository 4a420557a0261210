package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store holds the ent SQL driver and provides access to repositories.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
	now func() time.Time
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and runs auto-migration.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	drv := entsql.OpenDB(dialect.SQLite, db)
	ctx := context.Background()

	if err := migrate(ctx, drv); err != nil {
		drv.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	if err := ensureSequence(ctx, drv); err != nil {
		drv.Close()
		return nil, err
	}

	return &Store{db: db, drv: drv, now: time.Now}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Driver returns the ent SQL driver the repositories run on.
func (s *Store) Driver() *entsql.Driver {
	return s.drv
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// ProfileRepo returns a ProfileRepo backed by this store.
func (s *Store) ProfileRepo() ProfileRepo {
	return s.repos(s.drv).Profiles
}

// EventRepo returns an EventRepo backed by this store.
func (s *Store) EventRepo() EventRepo {
	return s.repos(s.drv).Events
}

// ResultRepo returns a ResultRepo backed by this store.
func (s *Store) ResultRepo() ResultRepo {
	return s.repos(s.drv).Results
}

// Repos groups repositories that share one connection or transaction.
type Repos struct {
	Profiles ProfileRepo
	Events   EventRepo
	Results  ResultRepo
}

func (s *Store) repos(conn dialect.ExecQuerier) Repos {
	return Repos{
		Profiles: &profileRepo{conn: conn, now: s.now},
		Events:   &eventRepo{conn: conn, now: s.now},
		Results:  &resultRepo{conn: conn},
	}
}

// InTx runs fn with repositories bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) InTx(ctx context.Context, fn func(Repos) error) error {
	return withTx(ctx, s.drv, func(conn dialect.ExecQuerier) error {
		return fn(s.repos(conn))
	})
}

// withTx runs fn in a new transaction when conn is a driver. A conn that
// is already a transaction runs fn inline, so repositories bound by InTx
// join the outer transaction.
func withTx(ctx context.Context, conn dialect.ExecQuerier, fn func(dialect.ExecQuerier) error) error {
	drv, ok := conn.(dialect.Driver)
	if !ok {
		return fn(conn)
	}
	tx, err := drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if v := recover(); v != nil {
			tx.Rollback()
			panic(v)
		}
	}()
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rerr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// sqlite builds statements quoted for the SQLite dialect.
var sqlite = entsql.Dialect(dialect.SQLite)

func execStmt(ctx context.Context, conn dialect.ExecQuerier, stmt entsql.Querier) (sql.Result, error) {
	query, args := stmt.Query()
	var res sql.Result
	if err := conn.Exec(ctx, query, args, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func queryStmt(ctx context.Context, conn dialect.ExecQuerier, stmt entsql.Querier) (*entsql.Rows, error) {
	query, args := stmt.Query()
	rows := &entsql.Rows{}
	if err := conn.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. ADAPTIQ_DB environment variable
// 2. $XDG_DATA_HOME/adaptiq/adaptiq.db
// 3. ~/.local/share/adaptiq/adaptiq.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("ADAPTIQ_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "adaptiq", "adaptiq.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }
