// Package application exposes the settings of one extension.
package application

import (
	"context"
	"log/slog"

	"github.com/kolabsys/phlesk/internal/settings/domain"
)

// Settings reads and writes the settings of a single module.
type Settings struct {
	store  domain.Store
	module string
	logger *slog.Logger
}

// NewSettings scopes store to module.
func NewSettings(store domain.Store, module string, logger *slog.Logger) *Settings {
	if logger == nil {
		logger = slog.Default()
	}
	return &Settings{store: store, module: module, logger: logger.With("module", module)}
}

// Module returns the module id the settings belong to.
func (s *Settings) Module() string {
	return s.module
}

// Get returns the setting value and whether it is set. Store failures are
// logged and reported as unset.
func (s *Settings) Get(ctx context.Context, name string) (string, bool) {
	value, ok, err := s.store.Get(ctx, s.module, name)
	if err != nil {
		s.logger.Error("failed to read setting", "name", name, "error", err)
		return "", false
	}
	return value, ok
}

// Value returns the setting, or "" when unset.
func (s *Settings) Value(ctx context.Context, name string) string {
	value, _ := s.Get(ctx, name)
	return value
}

// Set stores a setting.
func (s *Settings) Set(ctx context.Context, name, value string) error {
	return s.store.Set(ctx, s.module, name, value)
}
