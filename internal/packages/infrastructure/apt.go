package infrastructure

import (
	"context"

	"github.com/kolabsys/phlesk/internal/packages/domain"
	platform "github.com/kolabsys/phlesk/internal/platform/domain"
	"github.com/kolabsys/phlesk/internal/shared/infrastructure/command"
)

// aptInstallOptions keep existing configuration files and skip recommended
// packages.
var aptInstallOptions = []string{
	"--assume-yes",
	"-o", "Dpkg::Options::=--force-confdef",
	"-o", "Dpkg::Options::=--force-confold",
	"-o", "APT::Install-Recommends=no",
	"install",
}

// AptManager drives dpkg, apt-cache and apt-get or aptitude.
type AptManager struct {
	runner command.Runner
}

var _ domain.Manager = (*AptManager)(nil)

// NewAptManager creates a Debian-family package manager.
func NewAptManager(runner command.Runner) *AptManager {
	return &AptManager{runner: runner}
}

// Family implements domain.Manager.
func (m *AptManager) Family() platform.Family {
	return platform.FamilyApt
}

// InstallCommand prefers aptitude when it is installed.
func (m *AptManager) InstallCommand(ctx context.Context) []string {
	tool := "apt-get"
	if m.IsInstalled(ctx, "aptitude") {
		tool = "aptitude"
	}
	return append([]string{tool}, aptInstallOptions...)
}

// IsInstalled implements domain.Manager.
func (m *AptManager) IsInstalled(ctx context.Context, pkg string) bool {
	return m.runner.Run(ctx, "dpkg", []string{"-l", pkg}, true).Success()
}

// IsAvailable implements domain.Manager.
func (m *AptManager) IsAvailable(ctx context.Context, pkg string) bool {
	return m.runner.Run(ctx, "apt-cache", []string{"show", pkg}, true).Success()
}
