package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kolabsys/phlesk/internal/hosting/domain"
)

// NotAvailable is reported for the seat limit without a license evaluator.
const NotAvailable = "N/A"

// LicenseInfo is the license state of the current extension.
type LicenseInfo interface {
	IsLicensed(ctx context.Context) bool
	LicenseLimit(ctx context.Context) int
}

// ExtensionInfo describes registered extensions.
type ExtensionInfo interface {
	Permissions(target string) []string
	IsInstalled(ctx context.Context, target string) bool
}

// Counters tallies domains, or the mailboxes of those domains, by kind.
type Counters struct {
	NumTotal       int            `json:"numTotal"`
	NumPrimary     int            `json:"numPrimary"`
	NumHosting     int            `json:"numHosting"`
	NumMailservice int            `json:"numMailservice"`
	NumWildcard    int            `json:"numWildcard"`
	NumIDN         int            `json:"numIDN"`
	NumEligible    int            `json:"numEligible"`
	Permissions    map[string]int `json:"permissions"`
}

// Stats is the usage report the panel collects from the extension.
type Stats struct {
	Licensed     *bool    `json:"licensed"`
	NumLicensed  any      `json:"numLicensed"`
	Version      string   `json:"version"`
	Installed    bool     `json:"installed"`
	UpdateConfig int      `json:"updateConfig"`
	Domains      Counters `json:"domains"`
	Users        Counters `json:"users"`
}

// Statistics collects Stats for the current extension.
type Statistics struct {
	directory  *Directory
	panel      domain.PanelRepository
	extensions ExtensionInfo
	modules    ModuleProvider
	license    LicenseInfo
	logger     *slog.Logger
}

// NewStatistics creates a collector.
func NewStatistics(
	directory *Directory,
	panel domain.PanelRepository,
	extensions ExtensionInfo,
	modules ModuleProvider,
	logger *slog.Logger,
) *Statistics {
	if logger == nil {
		logger = slog.Default()
	}
	return &Statistics{
		directory:  directory,
		panel:      panel,
		extensions: extensions,
		modules:    modules,
		logger:     logger,
	}
}

// SetLicense sets the license evaluator of the extension.
func (s *Statistics) SetLicense(license LicenseInfo) {
	s.license = license
}

// Collect gathers the report.
func (s *Statistics) Collect(ctx context.Context) (*Stats, error) {
	module := s.modules.ModuleID()

	stats := &Stats{
		NumLicensed:  NotAvailable,
		Version:      s.Version(ctx),
		Installed:    s.extensions.IsInstalled(ctx, module),
		UpdateConfig: s.UpdateSettings(ctx).Bits(),
	}
	if s.license != nil {
		licensed := s.license.IsLicensed(ctx)
		stats.Licensed = &licensed
		stats.NumLicensed = s.license.LicenseLimit(ctx)
	}

	domains, err := s.directory.AllDomains(ctx, nil, Filter{})
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}

	permissions := s.extensions.Permissions(module)
	stats.Domains = newCounters(permissions)
	stats.Users = newCounters(permissions)
	stats.Domains.NumTotal = len(domains)

	for _, d := range domains {
		users, err := s.directory.ListUsers(ctx, d, false)
		if err != nil {
			return nil, err
		}
		n := len(users)
		stats.Users.NumTotal += n

		for _, permission := range permissions {
			granted, err := s.directory.HasPermission(ctx, d.ID, permission)
			if err != nil {
				return nil, err
			}
			if granted {
				stats.Domains.Permissions[permission]++
				stats.Users.Permissions[permission] += n
			}
		}

		primary := s.directory.IsPrimary(ctx, d)
		hosting := s.directory.HasHosting(ctx, d)
		mail := s.directory.HasMailService(ctx, d)
		wildcard := d.IsWildcard()

		tally := func(when bool, domains, users *int) {
			if when {
				*domains++
				*users += n
			}
		}
		tally(primary, &stats.Domains.NumPrimary, &stats.Users.NumPrimary)
		tally(hosting, &stats.Domains.NumHosting, &stats.Users.NumHosting)
		tally(mail, &stats.Domains.NumMailservice, &stats.Users.NumMailservice)
		tally(wildcard, &stats.Domains.NumWildcard, &stats.Users.NumWildcard)
		tally(d.IsIDN(), &stats.Domains.NumIDN, &stats.Users.NumIDN)
		tally(primary && hosting && mail && !wildcard, &stats.Domains.NumEligible, &stats.Users.NumEligible)
	}

	return stats, nil
}

// Version returns "<version>-<release>" of the current extension, or ""
// when it is not registered.
func (s *Statistics) Version(ctx context.Context) string {
	version, release, err := s.panel.ModuleVersion(ctx, s.modules.ModuleID())
	if err != nil {
		s.logger.Error("failed to read module version", "error", err)
		return ""
	}
	return version + "-" + release
}

// UpdateSettings reads the panel update configuration.
func (s *Statistics) UpdateSettings(ctx context.Context) domain.UpdateSettings {
	misc, err := s.panel.Misc(ctx,
		domain.MiscDisableUpdater,
		domain.MiscSystemPackageUpdates,
		domain.MiscThirdPartyUpgrades,
		domain.MiscSafeUpdatesOnly,
		domain.MiscAutoupgradeBranch,
	)
	if err != nil {
		s.logger.Error("failed to read update settings", "error", err)
		return domain.UpdateSettings{}
	}
	return domain.UpdateSettingsFromMisc(misc)
}

func newCounters(permissions []string) Counters {
	c := Counters{Permissions: make(map[string]int, len(permissions))}
	for _, p := range permissions {
		c.Permissions[p] = 0
	}
	return c
}
