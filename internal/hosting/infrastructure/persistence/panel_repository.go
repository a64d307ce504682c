package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/kolabsys/phlesk/internal/hosting/domain"
	"github.com/kolabsys/phlesk/internal/shared/infrastructure/database"
)

// PanelRepository implements domain.PanelRepository.
type PanelRepository struct {
	conn database.Connection
}

// NewPanelRepository creates a panel repository.
func NewPanelRepository(conn database.Connection) *PanelRepository {
	return &PanelRepository{conn: conn}
}

// Misc returns the requested misc parameters that are set.
func (r *PanelRepository) Misc(ctx context.Context, params ...string) (map[string]string, error) {
	values := make(map[string]string, len(params))
	if len(params) == 0 {
		return values, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(params)), ", ")
	args := make([]any, len(params))
	for i, p := range params {
		args[i] = p
	}

	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx,
		`SELECT param, val FROM misc WHERE param IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("read misc: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var param, val string
		if err := rows.Scan(&param, &val); err != nil {
			return nil, fmt.Errorf("scan misc: %w", err)
		}
		values[param] = val
	}
	return values, rows.Err()
}

// ModuleVersion returns the version and release of an installed extension.
func (r *PanelRepository) ModuleVersion(ctx context.Context, module string) (string, string, error) {
	var version, release string
	err := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT version, "release" FROM Modules WHERE name = ?`, module,
	).Scan(&version, &release)
	if database.IsNoRows(err) {
		return "", "", fmt.Errorf("%w: %s", domain.ErrModuleNotFound, module)
	}
	if err != nil {
		return "", "", fmt.Errorf("read version of %s: %w", module, err)
	}
	return version, release, nil
}

var _ domain.PanelRepository = (*PanelRepository)(nil)
