// Package app wires the phlesk components for one extension.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	extensionApp "github.com/kolabsys/phlesk/internal/extension/application"
	extensionDomain "github.com/kolabsys/phlesk/internal/extension/domain"
	hostingApp "github.com/kolabsys/phlesk/internal/hosting/application"
	hostingDomain "github.com/kolabsys/phlesk/internal/hosting/domain"
	"github.com/kolabsys/phlesk/internal/hosting/infrastructure/actionlog"
	"github.com/kolabsys/phlesk/internal/hosting/infrastructure/panel"
	hostingPersistence "github.com/kolabsys/phlesk/internal/hosting/infrastructure/persistence"
	"github.com/kolabsys/phlesk/internal/hosting/infrastructure/rpc"
	licensingApp "github.com/kolabsys/phlesk/internal/licensing/application"
	licensingDomain "github.com/kolabsys/phlesk/internal/licensing/domain"
	licensingPersistence "github.com/kolabsys/phlesk/internal/licensing/infrastructure/persistence"
	packagesApp "github.com/kolabsys/phlesk/internal/packages/application"
	packagesInfra "github.com/kolabsys/phlesk/internal/packages/infrastructure"
	platformApp "github.com/kolabsys/phlesk/internal/platform/application"
	platformDomain "github.com/kolabsys/phlesk/internal/platform/domain"
	platformInfra "github.com/kolabsys/phlesk/internal/platform/infrastructure"
	settingsApp "github.com/kolabsys/phlesk/internal/settings/application"
	settingsDomain "github.com/kolabsys/phlesk/internal/settings/domain"
	settingsRedis "github.com/kolabsys/phlesk/internal/settings/infrastructure/redis"
	settingsSQL "github.com/kolabsys/phlesk/internal/settings/infrastructure/sql"
	"github.com/kolabsys/phlesk/internal/shared/infrastructure/command"
	"github.com/kolabsys/phlesk/internal/shared/infrastructure/crypto"
	"github.com/kolabsys/phlesk/internal/shared/infrastructure/database"
	_ "github.com/kolabsys/phlesk/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/kolabsys/phlesk/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/kolabsys/phlesk/internal/shared/infrastructure/eventbus"
	"github.com/kolabsys/phlesk/internal/shared/infrastructure/migrations"
	"github.com/kolabsys/phlesk/internal/shared/infrastructure/outbox"
	systemApp "github.com/kolabsys/phlesk/internal/system/application"
	"github.com/kolabsys/phlesk/pkg/config"
	"github.com/kolabsys/phlesk/pkg/observability"
)

// actionLogHistory is how many action log entries the in-process recorder
// keeps.
const actionLogHistory = 100

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.InMemoryMetrics
	Health  *observability.HealthRegistry

	// Backends
	DBConn      database.Connection
	RedisClient *redis.Client
	Publisher   eventbus.Publisher
	ActionLog   *actionlog.Recorder
	Spool       database.Connection
	Outbox      *outbox.Processor

	// System
	Runner     command.Runner
	Platform   *platformApp.Service
	Packages   *packagesApp.Installer
	Module     *packagesApp.ModulePackages
	Services   *systemApp.Services
	Components *systemApp.Components
	Downloader *systemApp.Downloader
	Templates  *systemApp.Templates

	// Settings
	SettingsStore settingsDomain.Store
	Settings      *settingsApp.Settings

	// Hosting
	RPC               *rpc.Client
	Panel             *hostingPersistence.PanelRepository
	Directory         *hostingApp.Directory
	Integration       *hostingApp.Integration
	DefaultPermission *hostingApp.DefaultPermission
	MailboxCounter    *hostingApp.MailboxCounter
	Statistics        *hostingApp.Statistics

	// Licensing
	LicenseStore licensingDomain.Store
	License      *licensingApp.Evaluator

	// Extensions
	Extension  *extensionApp.Context
	Extensions *extensionApp.Registry
	Cooperate  *extensionApp.Service
}

// NewContainer creates the container for cfg.ModuleID. Redis and RabbitMQ
// are optional; in development an unreachable one is replaced by a local
// fallback.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
		Health:  observability.NewHealthRegistry(),
	}

	c.initSystem()

	if err := c.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := c.initSettings(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initPublisher(); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initHosting(); err != nil {
		c.Close()
		return nil, err
	}

	logger.Info("container initialized",
		"driver", c.DBConn.Driver(),
		"platform", c.Platform.Platform().String(),
	)
	return c, nil
}

func (c *Container) initSystem() {
	cfg := c.Config

	exec := command.NewExecRunner(c.Logger)
	exec.SetMetrics(c.Metrics)
	c.Runner = exec
	if cfg.ExecuteHelper {
		c.Runner = command.NewSbinRunner(exec, cfg.SbinDir, cfg.ModuleID, c.Logger)
	}

	var source platformDomain.InfoSource = platformInfra.NewOSReleaseSource(cfg.OSReleasePath)
	if cfg.HasOSOverride() {
		source = platformInfra.StaticSource{Info: platformDomain.OSInfo{Name: cfg.OSName, Version: cfg.OSVersion}}
	}
	c.Platform = platformApp.NewService(source, c.Runner, cfg.VarDir, c.Logger)
	c.Packages = packagesApp.NewInstaller(c.Platform, packagesInfra.NewAdapter(c.Runner, c.Logger), c.Runner, c.Logger)
	c.Module = packagesApp.NewModulePackages(c.Packages, c.Platform, cfg.PackageKeyURL, cfg.Packages, c.Logger)

	c.Services = systemApp.NewServices(c.Runner, c.Logger)
	c.Components = systemApp.NewComponents(c.Runner, c.Logger)
	c.Templates = systemApp.NewTemplates(cfg.VarDir, c.Logger)
}

func (c *Container) initDatabase(ctx context.Context) error {
	cfg := c.Config

	dbCfg := database.Config{
		Driver:     database.Driver(cfg.DatabaseDriver),
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
		MaxConns:   cfg.DatabaseMaxConns,
	}
	if !cfg.LocalMode && dbCfg.Driver == database.DriverSQLite {
		dbCfg.SQLitePath = ""
	}

	conn, err := database.Open(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}
	c.DBConn = conn
	c.Health.Register("database", observability.PingChecker("database", observability.HealthStatusUnhealthy, conn.Ping))

	if conn.Driver() != database.DriverSQLite {
		c.Logger.Info("connected to database", "driver", conn.Driver())
		return nil
	}

	c.Logger.Info("running SQLite migrations")
	if err := migrations.RunSQLiteMigrations(ctx, conn); err != nil {
		conn.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if cfg.LocalMode {
		if err := ensureModuleRegistered(ctx, conn, cfg.ModuleID); err != nil {
			conn.Close()
			return err
		}
	}
	return nil
}

// ensureModuleRegistered adds the extension to a local database, which has
// no panel to register it.
func ensureModuleRegistered(ctx context.Context, exec database.Executor, module string) error {
	var id int64
	err := exec.QueryRow(ctx, "SELECT id FROM Modules WHERE name = ?", module).Scan(&id)
	if err == nil {
		return nil
	}
	if !database.IsNoRows(err) {
		return fmt.Errorf("failed to look up module %s: %w", module, err)
	}
	if _, err := exec.Exec(ctx, `INSERT INTO Modules (name, version, "release") VALUES (?, ?, ?)`, module, "dev", "0"); err != nil {
		return fmt.Errorf("failed to register module %s: %w", module, err)
	}
	return nil
}

func (c *Container) initSettings(ctx context.Context) error {
	cfg := c.Config
	c.SettingsStore = settingsSQL.NewStore(c.DBConn, c.Logger)

	if cfg.RedisURL != "" {
		client, err := connectRedis(ctx, cfg.RedisURL)
		switch {
		case err == nil:
			c.RedisClient = client
			c.SettingsStore = settingsRedis.NewStore(client)
			c.Health.Register("redis", observability.PingChecker("redis", observability.HealthStatusDegraded, func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			}))
			c.Logger.Info("connected to Redis")
		case cfg.IsDevelopment():
			c.Logger.Warn("Redis not available, settings stay in the database", "error", err)
		default:
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
	}

	c.Settings = settingsApp.NewSettings(c.SettingsStore, cfg.ModuleID, c.Logger)
	c.Downloader = systemApp.NewDownloader(c.Runner, c.Settings, cfg.VarDir, cfg.ReleaseURL, c.Logger)
	c.Downloader.SetPollInterval(cfg.InstallPollInterval)
	return nil
}

func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func (c *Container) initPublisher() error {
	cfg := c.Config

	if cfg.RabbitMQURL != "" {
		publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, c.Logger)
		switch {
		case err == nil:
			return c.initSpool(publisher)
		case cfg.IsDevelopment():
			c.Logger.Warn("RabbitMQ not available, action log stays in process", "error", err)
		default:
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
	}

	bus := eventbus.NewInProcessBus(c.Logger)
	c.ActionLog = actionlog.NewRecorder(actionLogHistory, c.Logger)
	bus.Subscribe(c.ActionLog)
	c.Publisher = bus
	return nil
}

// initSpool routes broker publishes through the outbox so refused events
// are replayed instead of lost.
func (c *Container) initSpool(broker eventbus.Publisher) error {
	ctx := context.Background()
	path := filepath.Join(c.Config.VarDir, "outbox.db")
	spool, err := database.Open(ctx, database.Config{Driver: database.DriverSQLite, SQLitePath: path})
	if err != nil {
		_ = broker.Close()
		return fmt.Errorf("failed to open outbox %s: %w", path, err)
	}
	c.Spool = spool
	if err := migrations.RunOutboxMigrations(ctx, spool); err != nil {
		_ = broker.Close()
		return fmt.Errorf("failed to migrate outbox: %w", err)
	}

	repo := outbox.NewSQLRepository(spool)
	c.Publisher = outbox.NewSpoolingPublisher(broker, repo, c.Logger)
	c.Outbox = outbox.NewProcessor(repo, broker, outbox.DefaultProcessorConfig(), c.Logger)
	c.Outbox.SetMetrics(c.Metrics)
	c.Health.Register("outbox", func(ctx context.Context) observability.HealthCheckResult {
		result := observability.HealthCheckResult{Status: observability.HealthStatusHealthy}
		pending, dead, err := repo.Counts(ctx)
		switch {
		case err != nil:
			result.Status = observability.HealthStatusDegraded
			result.Message = err.Error()
		case dead > 0:
			result.Status = observability.HealthStatusDegraded
			result.Message = fmt.Sprintf("%d pending, %d dead-lettered", pending, dead)
		case pending > 0:
			result.Message = fmt.Sprintf("%d pending", pending)
		}
		return result
	})
	return nil
}

func (c *Container) initHosting() error {
	cfg := c.Config

	c.RPC = rpc.NewClient(rpc.Config{
		URL:     cfg.RPCURL,
		Key:     cfg.RPCKey,
		Timeout: cfg.RPCTimeout,
	}, nil, c.Logger)
	c.RPC.SetMetrics(c.Metrics)

	domains := hostingPersistence.NewDomainRepository(c.DBConn)
	c.Panel = hostingPersistence.NewPanelRepository(c.DBConn)
	c.Directory = hostingApp.NewDirectory(
		domains,
		hostingPersistence.NewClientRepository(c.DBConn),
		hostingPersistence.NewMailRepository(c.DBConn),
		c.RPC,
		c.Logger,
	)
	if cfg.EncryptionKey != "" {
		enc, err := crypto.NewAESGCMFromBase64Key(cfg.EncryptionKey)
		if err != nil {
			return fmt.Errorf("invalid PHLESK_ENCRYPTION_KEY: %w", err)
		}
		c.Directory.SetDecrypter(enc)
	}

	c.MailboxCounter = hostingApp.NewMailboxCounter(domains, c.RPC, c.Logger)
	if cfg.LicenseFaker {
		c.Logger.Warn("using the license faker")
		c.LicenseStore = licensingPersistence.NewFakerStore(cfg.ModuleID, cfg.FakerUsers)
	} else {
		c.LicenseStore = licensingPersistence.NewKeyFileRepository(cfg.LicenseFile, cfg.ModuleID)
	}
	c.License = licensingApp.NewEvaluator(c.LicenseStore, c.MailboxCounter, c.Logger)

	c.Extension = extensionApp.NewContext(cfg.ModuleID, c.Logger)
	c.Extensions = extensionApp.NewRegistry(c.Logger)
	if cfg.PackageKeyURL != "" {
		c.License.SetActivator(c.Module)
	}
	capability := extensionDomain.Capability{
		ID:          cfg.ModuleID,
		Permissions: []string{extensionDomain.ManagePermission(cfg.ModuleID)},
		License:     c.License,
	}
	if len(cfg.Packages) > 0 || cfg.PackageKeyURL != "" {
		capability.Installer = c.Module
	}
	if err := c.Extensions.Register(capability); err != nil {
		return err
	}
	c.Cooperate = extensionApp.NewService(c.Extensions, c.Extension, c.Directory, c.Logger)
	c.registerDomainFilters()

	c.Integration = hostingApp.NewIntegration(actionlog.NewPublisher(c.Publisher, c.Logger), c.Extension, c.Logger)
	c.DefaultPermission = hostingApp.NewDefaultPermission(panel.NewPropertiesFile(cfg.PanelLicenseFile), c.Settings, domains, c.Logger)
	c.Statistics = hostingApp.NewStatistics(c.Directory, c.Panel, c.Cooperate, c.Extension, c.Logger)
	c.Statistics.SetLicense(c.License)
	return nil
}

// Domain filters selectable by name in Directory.AllDomains.
const (
	FilterActive      = "active"
	FilterNotWildcard = "notWildcard"
	FilterEnabled     = "enabled"
)

func (c *Container) registerDomainFilters() {
	module := c.Config.ModuleID
	c.Directory.RegisterFilter(FilterActive, func(ctx context.Context, d *hostingDomain.Domain) bool {
		return d.IsActive()
	})
	c.Directory.RegisterFilter(FilterNotWildcard, func(ctx context.Context, d *hostingDomain.Domain) bool {
		return !d.IsWildcard()
	})
	c.Directory.RegisterFilter(FilterEnabled, func(ctx context.Context, d *hostingDomain.Domain) bool {
		return c.Cooperate.IsEnabled(ctx, module, d.ID)
	})
}

// Close releases all backends.
func (c *Container) Close() {
	var errs []error
	if c.Outbox != nil {
		c.Outbox.Stop()
	}
	if c.Publisher != nil {
		errs = append(errs, c.Publisher.Close())
	}
	if c.Spool != nil {
		errs = append(errs, c.Spool.Close())
	}
	if c.RedisClient != nil {
		errs = append(errs, c.RedisClient.Close())
	}
	if c.DBConn != nil {
		errs = append(errs, c.DBConn.Close())
	}
	if err := errors.Join(errs...); err != nil {
		c.Logger.Warn("error closing container", "error", err)
	}
}
