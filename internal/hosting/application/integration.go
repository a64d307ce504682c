package application

import (
	"context"
	"log/slog"

	"github.com/kolabsys/phlesk/internal/hosting/domain"
)

// ModuleProvider returns the extension currently acting.
type ModuleProvider interface {
	ModuleID() string
}

// Integration announces that the current extension starts or stops
// serving a domain, so that other extensions can react.
type Integration struct {
	actionLog domain.ActionLog
	modules   ModuleProvider
	logger    *slog.Logger
}

// NewIntegration creates an integration notifier.
func NewIntegration(actionLog domain.ActionLog, modules ModuleProvider, logger *slog.Logger) *Integration {
	if logger == nil {
		logger = slog.Default()
	}
	return &Integration{actionLog: actionLog, modules: modules, logger: logger}
}

// EnableIntegration submits enable_domain for dom.
func (i *Integration) EnableIntegration(ctx context.Context, dom *domain.Domain) error {
	i.logger.Debug("triggering event 'enable_domain'", "domain", dom.Name)
	return i.actionLog.Submit(ctx, domain.EnableDomainEntry(i.modules.ModuleID(), dom.ID))
}

// DisableIntegration submits disable_domain for dom.
func (i *Integration) DisableIntegration(ctx context.Context, dom *domain.Domain) error {
	i.logger.Debug("triggering event 'disable_domain'", "domain", dom.Name)
	return i.actionLog.Submit(ctx, domain.DisableDomainEntry(i.modules.ModuleID(), dom.ID))
}
