package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kolabsys/phlesk/internal/hosting/domain"
	settingsdomain "github.com/kolabsys/phlesk/internal/settings/domain"
)

// PlanCapability tells whether the panel license allows managing service
// plans.
type PlanCapability interface {
	CanManagePlans() (bool, error)
}

// ModuleSettings reads and writes settings of the current extension.
type ModuleSettings interface {
	Get(ctx context.Context, name string) (string, bool)
	Set(ctx context.Context, name, value string) error
}

// DomainLister lists domains.
type DomainLister interface {
	All(ctx context.Context, primaryOnly bool) ([]*domain.Domain, error)
}

// DefaultPermission decides whether the extension permission is granted to
// new subscriptions by default.
type DefaultPermission struct {
	plans    PlanCapability
	settings ModuleSettings
	domains  DomainLister
	logger   *slog.Logger
}

// NewDefaultPermission creates the decision helper.
func NewDefaultPermission(plans PlanCapability, settings ModuleSettings, domains DomainLister, logger *slog.Logger) *DefaultPermission {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultPermission{plans: plans, settings: settings, domains: domains, logger: logger}
}

// Resolve returns the default. Without plan management the permission can
// never be toggled, so it is always granted. Otherwise the stored setting
// wins; on first use it is granted only when the panel has no domains yet.
func (p *DefaultPermission) Resolve(ctx context.Context) (bool, error) {
	canManage, err := p.plans.CanManagePlans()
	if err != nil {
		return false, fmt.Errorf("read panel license: %w", err)
	}

	if !canManage {
		if err := p.settings.Set(ctx, settingsdomain.SettingPermissionDefault, "1"); err != nil {
			return false, err
		}
		return true, nil
	}

	value, ok := p.settings.Get(ctx, settingsdomain.SettingPermissionDefault)
	if !ok {
		domains, err := p.domains.All(ctx, true)
		if err != nil {
			return false, err
		}
		value = "0"
		if len(domains) == 0 {
			value = "1"
		}
		if err := p.settings.Set(ctx, settingsdomain.SettingPermissionDefault, value); err != nil {
			return false, err
		}
		p.logger.Info("initialised default permission", "value", value)
	}

	return value != "" && value != "0", nil
}
