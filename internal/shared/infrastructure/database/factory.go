package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultSQLitePath is the local host database used when no URL is set.
const DefaultSQLitePath = "/var/lib/phlesk/host.db"

// Config holds database configuration.
type Config struct {
	// Driver selects the backend; empty means detect from URL.
	Driver Driver
	// URL is the PostgreSQL connection string.
	URL string
	// SQLitePath is the SQLite database file.
	SQLitePath string
	// MaxConns caps the PostgreSQL pool size.
	MaxConns int
}

// Opener opens a connection for a driver.
type Opener func(ctx context.Context, cfg Config) (Connection, error)

var openers = map[Driver]Opener{}

// Register makes a driver available to Open. Driver packages call it from
// init, so importing them for side effects enables the driver.
func Register(driver Driver, open Opener) {
	openers[driver] = open
}

// Open connects to the database described by cfg.
func Open(ctx context.Context, cfg Config) (Connection, error) {
	driver := cfg.Driver
	if driver == "" || driver == "auto" {
		driver = DetectDriver(cfg.URL)
	}

	open, ok := openers[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
	return open(ctx, cfg)
}

// EnsureDirectory creates the parent directory of path.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0755)
}
