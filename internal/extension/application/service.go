package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kolabsys/phlesk/internal/extension/domain"
)

// PermissionChecker reports whether a permission is granted to a domain.
type PermissionChecker interface {
	HasPermission(ctx context.Context, domainID int64, permission string) (bool, error)
}

// Service lets the current extension see whether other extensions are
// active, installed and enabled for a domain.
type Service struct {
	registry    *Registry
	context     *Context
	permissions PermissionChecker
	logger      *slog.Logger
}

// NewService creates the service.
func NewService(registry *Registry, ectx *Context, permissions PermissionChecker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		registry:    registry,
		context:     ectx,
		permissions: permissions,
		logger:      logger,
	}
}

func (s *Service) active(target string) (Entry, bool) {
	entry, err := s.registry.Get(target)
	if err != nil {
		s.logger.Debug("extension is not available", "extension", target)
		return Entry{}, false
	}
	if !entry.Active {
		s.logger.Debug("extension is not active", "extension", target)
		return Entry{}, false
	}
	return entry, true
}

// IsActive reports whether target is registered and active.
func (s *Service) IsActive(target string) bool {
	_, ok := s.active(target)
	return ok
}

// Permissions returns the permissions target declares, or nil when it is
// inactive or declares none.
func (s *Service) Permissions(target string) []string {
	entry, ok := s.active(target)
	if !ok {
		return nil
	}
	return append([]string(nil), entry.Capability.Permissions...)
}

// IsInstalled reports whether target is active and has its software
// installed.
func (s *Service) IsInstalled(ctx context.Context, target string) bool {
	entry, ok := s.active(target)
	if !ok {
		return false
	}
	return entry.Capability.InstallerOrNop().IsInstalled(ctx)
}

// IsLicensed reports whether target is active and licensed. Extensions
// without a license checker are always licensed.
func (s *Service) IsLicensed(ctx context.Context, target string) bool {
	entry, ok := s.active(target)
	if !ok {
		return false
	}
	if entry.Capability.License == nil {
		return true
	}
	return entry.Capability.License.IsLicensed(ctx)
}

// IsEnabled reports whether target is enabled for a domain: target must be
// active, both the current extension and target must have their software
// installed, and the domain must hold one of target's permissions.
func (s *Service) IsEnabled(ctx context.Context, target string, domainID int64) bool {
	entry, ok := s.active(target)
	if !ok {
		return false
	}

	current := s.context.ModuleID()
	if !s.IsInstalled(ctx, current) {
		s.logger.Debug("extension does not have its software installed", "extension", current)
		return false
	}

	previous := s.context.In(target)
	defer s.context.Out(previous)

	if !entry.Capability.InstallerOrNop().IsInstalled(ctx) {
		s.logger.Debug("extension does not have its software installed", "extension", target)
		return false
	}

	for _, permission := range entry.Capability.EffectivePermissions() {
		s.logger.Debug("testing permission", "extension", target, "permission", permission)
		granted, err := s.permissions.HasPermission(ctx, domainID, permission)
		if err != nil {
			s.logger.Error("failed to check permission",
				"extension", target,
				"permission", permission,
				"domain_id", domainID,
				"error", err,
			)
			continue
		}
		if granted {
			return true
		}
	}
	return false
}

// Install runs the installer hooks of target in order: PreInstall, Install,
// PostInstall. The first failing hook stops the sequence.
func (s *Service) Install(ctx context.Context, target string) error {
	entry, ok := s.active(target)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrExtensionNotFound, target)
	}

	previous := s.context.In(target)
	defer s.context.Out(previous)

	installer := entry.Capability.InstallerOrNop()
	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"pre-install", installer.PreInstall},
		{"install", installer.Install},
		{"post-install", installer.PostInstall},
	}
	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			return fmt.Errorf("%s %s: %w", target, step.name, err)
		}
	}
	s.logger.InfoContext(ctx, "extension software installed", "extension", target)
	return nil
}

// PrepareUninstall runs the PreUninstall hook of target.
func (s *Service) PrepareUninstall(ctx context.Context, target string) error {
	entry, ok := s.active(target)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrExtensionNotFound, target)
	}

	previous := s.context.In(target)
	defer s.context.Out(previous)

	if err := entry.Capability.InstallerOrNop().PreUninstall(ctx); err != nil {
		return fmt.Errorf("%s pre-uninstall: %w", target, err)
	}
	return nil
}
