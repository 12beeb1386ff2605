package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/iammorganparry/circle/internal/store/migrations"
)

// Supported database/sql driver names.
const (
	DriverCgo  = "sqlite3"
	DriverPure = "sqlite"
)

// DB wraps the SQLite connection with initialization logic.
type DB struct {
	*sql.DB
}

// Open creates or opens the SQLite database at the given path with the named
// driver, configures WAL mode and applies pending migrations.
func Open(driver, dbPath string) (*DB, error) {
	if driver == "" {
		driver = DriverCgo
	}
	dsn, err := dataSource(driver, dbPath)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite handles one writer at a time

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err := applyMigrations(db, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &DB{db}, nil
}

// dataSource builds the DSN; the two drivers spell pragmas differently.
func dataSource(driver, dbPath string) (string, error) {
	switch driver {
	case DriverCgo:
		return dbPath + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=ON", nil
	case DriverPure:
		return "file:" + dbPath +
			"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)", nil
	default:
		return "", fmt.Errorf("unsupported sqlite driver %q", driver)
	}
}
