package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Panel locations used when nothing else is configured.
const (
	DefaultPanelRoot   = "/usr/local/psa"
	DefaultModuleID    = "kolab"
	DefaultRPCURL      = "https://127.0.0.1:8443/enterprise/control/agent.php"
	DefaultSQLitePath  = "/var/lib/phlesk/host.db"
	DefaultOSRelease   = "/etc/os-release"
	DefaultFakerUsers  = 10
	licenseKeyFileName = "license.json"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv        string
	LogLevel      string
	EncryptionKey string

	// Extension
	ModuleID      string
	VarDir        string
	SbinDir       string
	ExecuteHelper bool

	// Database
	DatabaseURL      string
	DatabaseDriver   string
	SQLitePath       string
	DatabaseMaxConns int
	LocalMode        bool

	// Redis
	RedisURL string

	// RabbitMQ
	RabbitMQURL string

	// Panel API
	RPCURL     string
	RPCKey     string
	RPCTimeout time.Duration

	// Licensing
	LicenseFile      string
	PanelLicenseFile string
	LicenseFaker     bool
	FakerUsers       int

	// Platform
	OSReleasePath string
	OSName        string
	OSVersion     string

	// Packages
	Packages      []string
	PackageKeyURL string

	// Files
	ReleaseURL          string
	InstallPollInterval time.Duration
}

// Load loads configuration from environment variables. Variables from the
// given dotenv files, or from .env when none are given, fill in the ones not
// set in the environment.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		// Load .env file if it exists (ignore error if not found)
		_ = godotenv.Load()
	} else if err := godotenv.Load(files...); err != nil {
		return nil, fmt.Errorf("load %s: %w", strings.Join(files, ", "), err)
	}

	moduleID := strings.ToLower(getEnv("PHLESK_MODULE_ID", DefaultModuleID))
	varDir := getEnv("PHLESK_VAR_DIR", filepath.Join(DefaultPanelRoot, "var", "modules", moduleID))

	cfg := &Config{
		AppEnv:        getEnv("APP_ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EncryptionKey: getEnv("PHLESK_ENCRYPTION_KEY", ""),

		ModuleID:      moduleID,
		VarDir:        varDir,
		SbinDir:       getEnv("PHLESK_SBIN_DIR", filepath.Join(DefaultPanelRoot, "admin", "sbin", "modules", moduleID)),
		ExecuteHelper: getBoolEnv("PHLESK_EXECUTE_HELPER", false),

		DatabaseURL:      getEnv("DATABASE_URL", ""),
		SQLitePath:       getEnv("PHLESK_SQLITE_PATH", DefaultSQLitePath),
		DatabaseMaxConns: getIntEnv("DATABASE_MAX_CONNS", 10),

		RedisURL:    getEnv("REDIS_URL", ""),
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		RPCURL:     getEnv("PHLESK_RPC_URL", DefaultRPCURL),
		RPCKey:     getEnv("PHLESK_RPC_KEY", ""),
		RPCTimeout: getDurationEnv("PHLESK_RPC_TIMEOUT", 30*time.Second),

		LicenseFile:      getEnv("PHLESK_LICENSE_FILE", filepath.Join(varDir, licenseKeyFileName)),
		PanelLicenseFile: getEnv("PHLESK_PANEL_LICENSE_FILE", filepath.Join(DefaultPanelRoot, "var", "license.properties")),
		LicenseFaker:     getBoolEnv("PHLESK_LICENSE_FAKER", false),
		FakerUsers:       getIntEnv("PHLESK_LICENSE_FAKER_USERS", DefaultFakerUsers),

		OSReleasePath: getEnv("PHLESK_OS_RELEASE", DefaultOSRelease),
		OSName:        getEnv("PHLESK_OS_NAME", ""),
		OSVersion:     getEnv("PHLESK_OS_VERSION", ""),

		Packages:      getListEnv("PHLESK_PACKAGES"),
		PackageKeyURL: getEnv("PHLESK_PACKAGE_KEY_URL", ""),

		ReleaseURL:          strings.TrimRight(getEnv("PHLESK_RELEASE_URL", ""), "/"),
		InstallPollInterval: getDurationEnv("PHLESK_INSTALL_POLL_INTERVAL", 3*time.Second),
	}

	// Local mode uses SQLite when no DATABASE_URL is set
	cfg.LocalMode = cfg.DatabaseURL == ""
	cfg.DatabaseDriver = DriverSQLite
	if !cfg.LocalMode && !strings.HasPrefix(cfg.DatabaseURL, "sqlite") {
		cfg.DatabaseDriver = DriverPostgres
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	if c.ModuleID == "" {
		return errors.New("PHLESK_MODULE_ID must not be empty")
	}
	if c.RPCTimeout <= 0 {
		return errors.New("PHLESK_RPC_TIMEOUT must be positive")
	}
	if c.InstallPollInterval <= 0 {
		return errors.New("PHLESK_INSTALL_POLL_INTERVAL must be positive")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// HasOSOverride reports whether the OS is configured rather than detected.
func (c *Config) HasOSOverride() bool {
	return c.OSName != "" && c.OSVersion != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getListEnv splits a comma separated variable, dropping empty items.
func getListEnv(key string) []string {
	var items []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
