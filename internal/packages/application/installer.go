// Package application installs OS packages on the detected platform.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kolabsys/phlesk/internal/packages/domain"
	platform "github.com/kolabsys/phlesk/internal/platform/domain"
	"github.com/kolabsys/phlesk/internal/shared/infrastructure/command"
)

// PlatformProvider supplies the host platform.
type PlatformProvider interface {
	Platform() platform.Platform
}

// PackageAdapter answers package queries per platform.
type PackageAdapter interface {
	InstallCommand(ctx context.Context, p platform.Platform) []string
	IsInstalled(ctx context.Context, p platform.Platform, pkg string) bool
	IsAvailable(ctx context.Context, p platform.Platform, pkg string) bool
}

// Plan classifies requested packages before installation.
type Plan struct {
	Platform         platform.Platform
	Command          []string
	Install          []string
	AlreadyInstalled []string
	Unavailable      []string
	Requested        int
}

// AllUnavailable reports whether no requested package can be installed.
func (p Plan) AllUnavailable() bool {
	return p.Requested > 0 && len(p.Unavailable) == p.Requested
}

// Installer installs the packages that are missing but available, in a
// single package manager invocation.
type Installer struct {
	platforms PlatformProvider
	adapter   PackageAdapter
	runner    command.Runner
	logger    *slog.Logger
}

// NewInstaller creates a new package installer.
func NewInstaller(platforms PlatformProvider, adapter PackageAdapter, runner command.Runner, logger *slog.Logger) *Installer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Installer{
		platforms: platforms,
		adapter:   adapter,
		runner:    runner,
		logger:    logger,
	}
}

// Plan works out which packages need installing. Duplicate names are
// considered once.
func (i *Installer) Plan(ctx context.Context, packages []string) (Plan, error) {
	p := i.platforms.Platform()
	plan := Plan{Platform: p}

	plan.Command = i.adapter.InstallCommand(ctx, p)
	if len(plan.Command) == 0 {
		return plan, fmt.Errorf("%w: %s", domain.ErrUnsupportedPlatform, p)
	}

	seen := make(map[string]struct{}, len(packages))
	for _, pkg := range packages {
		pkg = strings.TrimSpace(pkg)
		if pkg == "" {
			continue
		}
		if _, dup := seen[pkg]; dup {
			continue
		}
		seen[pkg] = struct{}{}
		plan.Requested++

		if i.adapter.IsInstalled(ctx, p, pkg) {
			i.logger.Debug("package already installed", "package", pkg)
			plan.AlreadyInstalled = append(plan.AlreadyInstalled, pkg)
			continue
		}
		if !i.adapter.IsAvailable(ctx, p, pkg) {
			i.logger.Debug("package not available", "package", pkg)
			plan.Unavailable = append(plan.Unavailable, pkg)
			continue
		}
		plan.Install = append(plan.Install, pkg)
	}

	return plan, nil
}

// IsInstalled reports whether pkg is installed on the host platform.
func (i *Installer) IsInstalled(ctx context.Context, pkg string) bool {
	return i.adapter.IsInstalled(ctx, i.platforms.Platform(), pkg)
}

// Install installs packages. It returns true when nothing needed installing
// or the batched install command exited 0, and false when the install
// failed or none of the packages are available. An error is returned only
// when the platform has no supported package manager.
func (i *Installer) Install(ctx context.Context, packages []string) (bool, error) {
	if len(packages) == 0 {
		return true, nil
	}

	plan, err := i.Plan(ctx, packages)
	if err != nil {
		i.logger.Error("cannot install packages", "error", err)
		return false, err
	}

	if len(plan.Install) > 0 {
		args := append(append([]string{}, plan.Command[1:]...), plan.Install...)
		result := i.runner.Run(ctx, plan.Command[0], args, false)
		if !result.Success() {
			return false, nil
		}
		i.logger.Info("packages installed", "packages", strings.Join(plan.Install, ", "))
		return true, nil
	}

	if plan.AllUnavailable() {
		i.logger.Error("none of the packages are available for installation",
			"packages", strings.Join(plan.Unavailable, ", "),
		)
		return false, nil
	}

	return true, nil
}
