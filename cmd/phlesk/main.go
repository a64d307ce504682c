package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kolabsys/phlesk/adapter/cli"
	cliComponent "github.com/kolabsys/phlesk/adapter/cli/component"
	cliDomain "github.com/kolabsys/phlesk/adapter/cli/domain"
	cliExtension "github.com/kolabsys/phlesk/adapter/cli/extension"
	cliLicense "github.com/kolabsys/phlesk/adapter/cli/license"
	cliOutbox "github.com/kolabsys/phlesk/adapter/cli/outbox"
	cliPkg "github.com/kolabsys/phlesk/adapter/cli/pkg"
	cliPlatform "github.com/kolabsys/phlesk/adapter/cli/platform"
	cliService "github.com/kolabsys/phlesk/adapter/cli/service"
	cliSettings "github.com/kolabsys/phlesk/adapter/cli/settings"
	"github.com/kolabsys/phlesk/internal/app"
	"github.com/kolabsys/phlesk/pkg/config"
	"github.com/kolabsys/phlesk/pkg/observability"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Global flags decide how configuration and logging are set up
	cli.ParseGlobalFlags(os.Args[1:])

	logger := observability.LoggerFromEnv(cli.Version)
	if cli.Verbose() {
		logCfg := observability.DefaultLogConfig()
		logCfg.Level = observability.LogLevelDebug
		logCfg.ServiceVersion = cli.Version
		logger = observability.NewLogger(logCfg)
	}
	slog.SetDefault(logger)
	cli.SetLogger(logger)

	// Cancel on shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var files []string
	if path := cli.ConfigFile(); path != "" {
		files = append(files, path)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		return 1
	}

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if !cfg.IsDevelopment() {
			logger.Error("failed to initialize container", "error", err)
			return 1
		}
		// Version and help still work without backends
		logger.Warn("failed to initialize container, running in limited mode", "error", err)
	} else {
		defer container.Close()

		cli.SetApp(&cli.App{
			Module:            cfg.ModuleID,
			Platform:          container.Platform,
			Packages:          container.Packages,
			Services:          container.Services,
			Components:        container.Components,
			Downloader:        container.Downloader,
			Templates:         container.Templates,
			Settings:          container.Settings,
			Directory:         container.Directory,
			Statistics:        container.Statistics,
			DefaultPermission: container.DefaultPermission,
			Integration:       container.Integration,
			Outbox:            container.Outbox,
			Registry:          container.Extensions,
			Extensions:        container.Cooperate,
			Health:            container.Health,
			Metrics:           container.Metrics,
		})
		cliLicense.SetEvaluator(container.License)
	}

	// Register commands
	cli.AddCommand(cliPlatform.Cmd)
	cli.AddCommand(cliPkg.Cmd)
	cli.AddCommand(cliLicense.Cmd)
	cli.AddCommand(cliService.Cmd)
	cli.AddCommand(cliComponent.Cmd)
	cli.AddCommand(cliDomain.Cmd)
	cli.AddCommand(cliSettings.Cmd)
	cli.AddCommand(cliExtension.Cmd)
	cli.AddCommand(cliOutbox.Cmd)

	if err := cli.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
