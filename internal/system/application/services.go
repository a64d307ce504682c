// Package application controls host services, panel components and
// extension files through the command runner.
package application

import (
	"context"
	"log/slog"

	"github.com/kolabsys/phlesk/internal/shared/infrastructure/command"
	"github.com/kolabsys/phlesk/internal/system/domain"
)

// Services drives systemd units. Every call is tolerant: failures only
// show up in the returned booleans.
type Services struct {
	runner command.Runner
	logger *slog.Logger
}

// NewServices creates a systemd controller.
func NewServices(runner command.Runner, logger *slog.Logger) *Services {
	if logger == nil {
		logger = slog.Default()
	}
	return &Services{runner: runner, logger: logger}
}

func (s *Services) systemctl(ctx context.Context, action string, svc domain.Service) command.Result {
	return s.runner.Run(ctx, domain.Systemctl, []string{action, svc.Unit}, true)
}

// IsConfigured reports whether the unit is enabled.
func (s *Services) IsConfigured(ctx context.Context, svc domain.Service) bool {
	return s.systemctl(ctx, "is-enabled", svc).ExitCode == domain.ExitOK
}

// IsInstalled reports whether systemd knows the unit.
func (s *Services) IsInstalled(ctx context.Context, svc domain.Service) bool {
	return s.systemctl(ctx, "status", svc).ExitCode != domain.ExitUnitNotFound
}

// IsRunning reports whether the unit is active.
func (s *Services) IsRunning(ctx context.Context, svc domain.Service) bool {
	return s.systemctl(ctx, "status", svc).ExitCode == domain.ExitOK
}

// Status queries all three states.
func (s *Services) Status(ctx context.Context, svc domain.Service) domain.Status {
	status := s.systemctl(ctx, "status", svc).ExitCode
	return domain.Status{
		Configured: s.IsConfigured(ctx, svc),
		Installed:  status != domain.ExitUnitNotFound,
		Running:    status == domain.ExitOK,
	}
}

// Start starts the unit.
func (s *Services) Start(ctx context.Context, svc domain.Service) bool {
	return s.control(ctx, "start", svc)
}

// Stop stops the unit.
func (s *Services) Stop(ctx context.Context, svc domain.Service) bool {
	return s.control(ctx, "stop", svc)
}

// Restart restarts the unit.
func (s *Services) Restart(ctx context.Context, svc domain.Service) bool {
	return s.control(ctx, "restart", svc)
}

func (s *Services) control(ctx context.Context, action string, svc domain.Service) bool {
	result := s.systemctl(ctx, action, svc)
	if !result.Success() {
		s.logger.Info("service action failed",
			"action", action,
			"unit", svc.Unit,
			"exit_code", result.ExitCode,
		)
		return false
	}
	s.logger.Debug("service action done", "action", action, "unit", svc.Unit)
	return true
}
