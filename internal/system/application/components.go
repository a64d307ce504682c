package application

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kolabsys/phlesk/internal/shared/infrastructure/command"
	"github.com/kolabsys/phlesk/internal/system/domain"
)

// Components installs and inspects panel components.
type Components struct {
	runner command.Runner
	logger *slog.Logger
}

// NewComponents creates a component manager.
func NewComponents(runner command.Runner, logger *slog.Logger) *Components {
	if logger == nil {
		logger = slog.Default()
	}
	return &Components{runner: runner, logger: logger}
}

// Install adds the named components through the panel installer. An empty
// list installs nothing and reports false.
func (c *Components) Install(ctx context.Context, names []string) bool {
	var wanted []string
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			wanted = append(wanted, name)
		}
	}
	if len(wanted) == 0 {
		return false
	}

	result := c.runner.Run(ctx, "plesk", []string{"installer", "add", "--components", strings.Join(wanted, ",")}, false)
	return result.Success()
}

// Installed lists the installed components.
func (c *Components) Installed(ctx context.Context) domain.InstalledComponents {
	result := c.runner.Run(ctx, "plesk", []string{"sbin", "packagemng", "--list"}, true)
	if !result.Success() {
		c.logger.Info("could not list panel components", "exit_code", result.ExitCode)
		return domain.InstalledComponents{}
	}
	return domain.ParseComponentList(result.Stdout)
}

// IsInstalled reports whether name is installed.
func (c *Components) IsInstalled(ctx context.Context, name string) bool {
	return c.Installed(ctx).Has(name)
}
