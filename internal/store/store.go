package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/roach88/polyquery/internal/querysql"
	"github.com/roach88/polyquery/internal/schema"
)

// Supported database drivers.
const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

//go:embed migrations/sqlite/*.sql migrations/mysql/*.sql
var migrations embed.FS

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

var (
	// ErrNotFound is returned when no case has the requested id or code.
	ErrNotFound = errors.New("case not found")

	// ErrAlreadySaved is returned by SaveCase for a case that already has an id.
	ErrAlreadySaved = errors.New("case already saved")
)

// Config describes how to open a store.
type Config struct {
	Driver string // sqlite3 (default) or mysql
	DSN    string // file path for sqlite3, DSN for mysql

	// SkipMigrations leaves the schema untouched on Open.
	SkipMigrations bool

	Logger *slog.Logger
}

// Store provides durable storage for cases.
type Store struct {
	db       *sql.DB
	driver   string
	logger   *slog.Logger
	compiler *querysql.SQLCompiler
}

// Open connects to the configured database, applies driver settings and runs
// pending migrations.
//
// This function is idempotent - safe to call multiple times on the same
// database.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}
	dsn, err := normalizeDSN(driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		// SQLite only supports one writer at a time, so limit connections
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		if err := applyPragmas(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragmas: %w", err)
		}
	}

	s := New(db, driver, cfg.Logger)

	if !cfg.SkipMigrations {
		if err := s.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}

	return s, nil
}

// New wraps an open database. It does not touch the schema.
func New(db *sql.DB, driver string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	compiler := querysql.NewSQLCompiler(schema.Default())
	compiler.Logger = logger
	return &Store{
		db:       db,
		driver:   driver,
		logger:   logger,
		compiler: compiler,
	}
}

// normalizeDSN validates the DSN for the driver.
func normalizeDSN(driver, dsn string) (string, error) {
	switch driver {
	case DriverSQLite:
		if dsn == "" {
			return "", errors.New("sqlite3 requires a database path")
		}
		return dsn, nil
	case DriverMySQL:
		mc, err := mysql.ParseDSN(dsn)
		if err != nil {
			return "", fmt.Errorf("invalid mysql dsn: %w", err)
		}
		mc.ParseTime = true
		return mc.FormatDSN(), nil
	default:
		return "", fmt.Errorf("unsupported driver %q: must be %s or %s", driver, DriverSQLite, DriverMySQL)
	}
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Driver returns the driver name the store was opened with.
func (s *Store) Driver() string {
	return s.driver
}

// Compiler returns the store's strict SQL compiler.
func (s *Store) Compiler() *querysql.SQLCompiler {
	return s.compiler
}

// Migrate applies all pending migrations for the store's dialect.
func (s *Store) Migrate(ctx context.Context) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	dir, err := s.useDialect()
	if err != nil {
		return err
	}
	if err := goose.UpContext(ctx, s.db, dir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// MigrationVersion returns the current migration version.
func (s *Store) MigrationVersion(ctx context.Context) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if _, err := s.useDialect(); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, s.db)
}

// useDialect configures goose for the store's driver and returns the
// migrations directory. Callers hold gooseMu.
func (s *Store) useDialect() (string, error) {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	dialect, dir := "sqlite3", "migrations/sqlite"
	if s.driver == DriverMySQL {
		dialect, dir = "mysql", "migrations/mysql"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return "", fmt.Errorf("failed to set dialect: %w", err)
	}
	return dir, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
