// Package infrastructure maps platforms onto OS package manager invocations.
package infrastructure

import (
	"context"
	"log/slog"

	"github.com/kolabsys/phlesk/internal/packages/domain"
	platform "github.com/kolabsys/phlesk/internal/platform/domain"
	"github.com/kolabsys/phlesk/internal/shared/infrastructure/command"
)

// Adapter dispatches package queries to the manager of a platform's family.
// Unknown platforms yield an empty install command and false answers.
type Adapter struct {
	managers map[platform.Family]domain.Manager
	logger   *slog.Logger
}

// NewAdapter creates an adapter with the apt, yum and dnf managers.
func NewAdapter(runner command.Runner, logger *slog.Logger) *Adapter {
	return NewAdapterWithManagers(logger,
		NewAptManager(runner),
		NewYumManager(runner),
		NewDnfManager(runner),
	)
}

// NewAdapterWithManagers creates an adapter over the given managers.
func NewAdapterWithManagers(logger *slog.Logger, managers ...domain.Manager) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Adapter{
		managers: make(map[platform.Family]domain.Manager, len(managers)),
		logger:   logger,
	}
	for _, m := range managers {
		a.managers[m.Family()] = m
	}
	return a
}

// Manager returns the manager for platform p.
func (a *Adapter) Manager(p platform.Platform) (domain.Manager, bool) {
	m, ok := a.managers[p.Family()]
	if !ok {
		a.logger.Error("package manager not supported", "platform", p.String())
	}
	return m, ok
}

// InstallCommand returns the install invocation for platform p, or nil.
func (a *Adapter) InstallCommand(ctx context.Context, p platform.Platform) []string {
	m, ok := a.Manager(p)
	if !ok {
		return nil
	}
	return m.InstallCommand(ctx)
}

// IsInstalled reports whether pkg is installed on platform p.
func (a *Adapter) IsInstalled(ctx context.Context, p platform.Platform, pkg string) bool {
	m, ok := a.Manager(p)
	if !ok {
		return false
	}
	return m.IsInstalled(ctx, pkg)
}

// IsAvailable reports whether pkg is installable on platform p.
func (a *Adapter) IsAvailable(ctx context.Context, p platform.Platform, pkg string) bool {
	m, ok := a.Manager(p)
	if !ok {
		return false
	}
	return m.IsAvailable(ctx, pkg)
}
