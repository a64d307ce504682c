package infrastructure

import (
	"context"

	"github.com/kolabsys/phlesk/internal/packages/domain"
	platform "github.com/kolabsys/phlesk/internal/platform/domain"
	"github.com/kolabsys/phlesk/internal/shared/infrastructure/command"
)

// RPMManager drives rpm together with yum or dnf.
type RPMManager struct {
	runner command.Runner
	tool   string
	family platform.Family
}

var _ domain.Manager = (*RPMManager)(nil)

// NewYumManager creates a manager for Red Hat 7 and older.
func NewYumManager(runner command.Runner) *RPMManager {
	return &RPMManager{runner: runner, tool: "yum", family: platform.FamilyYum}
}

// NewDnfManager creates a manager for Red Hat 8.
func NewDnfManager(runner command.Runner) *RPMManager {
	return &RPMManager{runner: runner, tool: "dnf", family: platform.FamilyDnf}
}

// Family implements domain.Manager.
func (m *RPMManager) Family() platform.Family {
	return m.family
}

// InstallCommand implements domain.Manager.
func (m *RPMManager) InstallCommand(ctx context.Context) []string {
	return []string{m.tool, "-y", "install"}
}

// IsInstalled implements domain.Manager.
func (m *RPMManager) IsInstalled(ctx context.Context, pkg string) bool {
	return m.runner.Run(ctx, "rpm", []string{"-qv", pkg}, true).Success()
}

// IsAvailable implements domain.Manager.
func (m *RPMManager) IsAvailable(ctx context.Context, pkg string) bool {
	return m.runner.Run(ctx, m.tool, []string{"list", pkg}, true).Success()
}
