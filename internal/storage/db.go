package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options selects and locates the database.
type Options struct {
	Driver string
	// DSN is passed to database/sql. For SQLite it is the file path.
	DSN string
	// MigrationURL is the golang-migrate database URL.
	MigrationURL string
}

// DB wraps a database handle and provides the workout and plan tables.
// Operations are serialized; the store assumes a single writer.
type DB struct {
	sql    *sql.DB
	driver string
	log    *slog.Logger
	mu     sync.Mutex
}

// Open connects to the database and ensures both tables exist. It is
// idempotent and must run before any other operation. Any failure is
// wrapped in ErrStorageUnavailable.
func Open(ctx context.Context, opts Options, log *slog.Logger) (*DB, error) {
	var sqlDriver string
	switch opts.Driver {
	case DriverSQLite, "":
		opts.Driver = DriverSQLite
		sqlDriver = "sqlite"
		if err := ensureParentDir(opts.DSN); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
		}
	case DriverPostgres:
		sqlDriver = "pgx"
	default:
		return nil, fmt.Errorf("%w: unknown driver %q", ErrStorageUnavailable, opts.Driver)
	}

	if err := RunMigrations(opts.Driver, opts.MigrationURL); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	conn, err := sql.Open(sqlDriver, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", ErrStorageUnavailable, err)
	}
	if opts.Driver == DriverSQLite {
		conn.SetMaxOpenConns(1)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: pinging database: %w", ErrStorageUnavailable, err)
	}

	log.Info("database initialized", "driver", opts.Driver)
	return &DB{sql: conn, driver: opts.Driver, log: log}, nil
}

// Close closes the database handle.
func (db *DB) Close() error {
	return db.sql.Close()
}

// RunMigrations applies all pending embedded migrations for driver.
func RunMigrations(driver, url string) error {
	src, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders as $n for Postgres.
func (db *DB) rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating database dir %s: %w", dir, err)
	}
	return nil
}
