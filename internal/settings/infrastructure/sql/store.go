// Package sql stores module settings in the host ModuleSettings table.
package sql

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kolabsys/phlesk/internal/settings/domain"
	"github.com/kolabsys/phlesk/internal/shared/infrastructure/database"
)

// Store implements domain.Store over the host database.
type Store struct {
	conn   database.Connection
	logger *slog.Logger
}

// NewStore creates a settings store.
func NewStore(conn database.Connection, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{conn: conn, logger: logger}
}

// Get implements domain.Store.
func (s *Store) Get(ctx context.Context, module, name string) (string, bool, error) {
	const query = `
		SELECT s.value FROM ModuleSettings s
		JOIN Modules m ON m.id = s.module_id
		WHERE m.name = ? AND s.name = ?`

	var value string
	err := database.ExecutorFromContext(ctx, s.conn).QueryRow(ctx, query, module, name).Scan(&value)
	if database.IsNoRows(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %s/%s: %w", module, name, err)
	}
	return value, true, nil
}

// Set implements domain.Store.
func (s *Store) Set(ctx context.Context, module, name, value string) error {
	return database.RunInTx(ctx, s.conn, func(ctx context.Context) error {
		exec := database.ExecutorFromContext(ctx, s.conn)

		var moduleID int64
		err := exec.QueryRow(ctx, `SELECT id FROM Modules WHERE name = ?`, module).Scan(&moduleID)
		if database.IsNoRows(err) {
			return fmt.Errorf("%w: %s", domain.ErrModuleNotRegistered, module)
		}
		if err != nil {
			return fmt.Errorf("look up module %s: %w", module, err)
		}

		_, err = exec.Exec(ctx, `
			INSERT INTO ModuleSettings (module_id, name, value) VALUES (?, ?, ?)
			ON CONFLICT (module_id, name) DO UPDATE SET value = excluded.value`,
			moduleID, name, value)
		if err != nil {
			return fmt.Errorf("set setting %s/%s: %w", module, name, err)
		}

		s.logger.Debug("setting stored", "module", module, "name", name)
		return nil
	})
}

var _ domain.Store = (*Store)(nil)
