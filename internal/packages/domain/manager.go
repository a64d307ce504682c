// Package domain describes system package managers.
package domain

import (
	"context"
	"errors"

	platform "github.com/kolabsys/phlesk/internal/platform/domain"
)

var (
	// ErrUnsupportedPlatform indicates no package manager is known for the platform.
	ErrUnsupportedPlatform = errors.New("package manager for platform is not supported")

	// ErrPackageUnavailable indicates a package cannot be found in any repository.
	ErrPackageUnavailable = errors.New("package not available")

	// ErrInstallFailed indicates the package manager did not install the packages.
	ErrInstallFailed = errors.New("package installation failed")
)

// Manager drives one family of OS package manager.
type Manager interface {
	// Family returns the platform family the manager serves.
	Family() platform.Family

	// InstallCommand returns the install invocation without package names.
	InstallCommand(ctx context.Context) []string

	// IsInstalled reports whether pkg is installed.
	IsInstalled(ctx context.Context, pkg string) bool

	// IsAvailable reports whether pkg can be installed from a repository.
	// Installed packages are also available.
	IsAvailable(ctx context.Context, pkg string) bool
}
