package application

import (
	"context"
	"fmt"
	"log/slog"

	licensing "github.com/kolabsys/phlesk/internal/licensing/domain"
	"github.com/kolabsys/phlesk/internal/packages/domain"
)

// KeyImporter trusts a package signing key on the host.
type KeyImporter interface {
	ImportPackageKey(ctx context.Context, uri string) error
}

// ModulePackages is the OS software of the current extension: the packages
// it needs and the repository key they are signed with.
type ModulePackages struct {
	installer *Installer
	keys      KeyImporter
	keyURL    string
	packages  []string
	logger    *slog.Logger
}

// NewModulePackages creates the package set. keyURL may be empty.
func NewModulePackages(installer *Installer, keys KeyImporter, keyURL string, packages []string, logger *slog.Logger) *ModulePackages {
	if logger == nil {
		logger = slog.Default()
	}
	return &ModulePackages{
		installer: installer,
		keys:      keys,
		keyURL:    keyURL,
		packages:  append([]string(nil), packages...),
		logger:    logger,
	}
}

// Packages returns the package names.
func (m *ModulePackages) Packages() []string {
	return append([]string(nil), m.packages...)
}

// PreInstall imports the repository key.
func (m *ModulePackages) PreInstall(ctx context.Context) error {
	if m.keyURL == "" {
		return nil
	}
	return m.keys.ImportPackageKey(ctx, m.keyURL)
}

// Install installs the missing packages.
func (m *ModulePackages) Install(ctx context.Context) error {
	ok, err := m.installer.Install(ctx, m.packages)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %v", domain.ErrInstallFailed, m.packages)
	}
	return nil
}

// PostInstall is a no-op.
func (m *ModulePackages) PostInstall(context.Context) error { return nil }

// PreUninstall is a no-op; package removal is left to the host.
func (m *ModulePackages) PreUninstall(context.Context) error { return nil }

// IsInstalled reports whether every package is installed.
func (m *ModulePackages) IsInstalled(ctx context.Context) bool {
	for _, pkg := range m.packages {
		if !m.installer.IsInstalled(ctx, pkg) {
			return false
		}
	}
	return true
}

// Activate enables the package repository once a license is present.
func (m *ModulePackages) Activate(ctx context.Context, license *licensing.License) bool {
	if err := m.PreInstall(ctx); err != nil {
		m.logger.Error("failed to import package key", "url", m.keyURL, "error", err)
		return false
	}
	return true
}
