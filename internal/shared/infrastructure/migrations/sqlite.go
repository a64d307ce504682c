// Package migrations holds the host database schema used in local mode and
// by tests, and the schema of the action-log spool.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/kolabsys/phlesk/internal/shared/infrastructure/database"
)

//go:embed sqlite/*.sql outbox/*.sql
var sqliteFS embed.FS

// Files returns the embedded host ".up.sql" migration names in apply order.
func Files() ([]string, error) {
	return files("sqlite")
}

func files(dir string) ([]string, error) {
	entries, err := sqliteFS.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)
	return upFiles, nil
}

// RunSQLiteMigrations executes all migrations in order. Statements use
// IF NOT EXISTS, so running them twice is harmless.
func RunSQLiteMigrations(ctx context.Context, exec database.Executor) error {
	return run(ctx, exec, "sqlite")
}

// RunOutboxMigrations creates the spool schema.
func RunOutboxMigrations(ctx context.Context, exec database.Executor) error {
	return run(ctx, exec, "outbox")
}

func run(ctx context.Context, exec database.Executor, dir string) error {
	upFiles, err := files(dir)
	if err != nil {
		return err
	}

	for _, file := range upFiles {
		migration, err := sqliteFS.ReadFile(dir + "/" + file)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file, err)
		}

		for _, stmt := range splitStatements(string(migration)) {
			if _, err := exec.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", file, err)
			}
		}
	}

	return nil
}

func splitStatements(script string) []string {
	var stmts []string
	for _, part := range strings.Split(script, ";") {
		var lines []string
		for _, line := range strings.Split(part, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "--") {
				continue
			}
			lines = append(lines, line)
		}
		if stmt := strings.TrimSpace(strings.Join(lines, "\n")); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
