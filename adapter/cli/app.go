package cli

import (
	"sync"

	extensionApp "github.com/kolabsys/phlesk/internal/extension/application"
	hostingApp "github.com/kolabsys/phlesk/internal/hosting/application"
	packagesApp "github.com/kolabsys/phlesk/internal/packages/application"
	platformApp "github.com/kolabsys/phlesk/internal/platform/application"
	settingsApp "github.com/kolabsys/phlesk/internal/settings/application"
	"github.com/kolabsys/phlesk/internal/shared/infrastructure/outbox"
	systemApp "github.com/kolabsys/phlesk/internal/system/application"
	"github.com/kolabsys/phlesk/pkg/observability"
)

// App holds the CLI application dependencies.
type App struct {
	// Module is the extension the CLI acts for.
	Module string

	// System
	Platform   *platformApp.Service
	Packages   *packagesApp.Installer
	Services   *systemApp.Services
	Components *systemApp.Components
	Downloader *systemApp.Downloader
	Templates  *systemApp.Templates

	// Settings
	Settings *settingsApp.Settings

	// Hosting
	Directory         *hostingApp.Directory
	Statistics        *hostingApp.Statistics
	DefaultPermission *hostingApp.DefaultPermission
	Integration       *hostingApp.Integration
	Outbox            *outbox.Processor

	// Extensions
	Registry   *extensionApp.Registry
	Extensions *extensionApp.Service

	// Observability
	Health  *observability.HealthRegistry
	Metrics *observability.InMemoryMetrics
}

var (
	appMu sync.RWMutex
	app   *App
)

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	appMu.Lock()
	defer appMu.Unlock()
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	appMu.RLock()
	defer appMu.RUnlock()
	return app
}
