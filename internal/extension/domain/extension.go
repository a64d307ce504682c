// Package domain describes the panel extensions a module can cooperate
// with.
package domain

import (
	"context"
	"strings"
)

// ManagePrefix prefixes the permission an extension is assumed to use when
// it declares none.
const ManagePrefix = "manage_"

// Installer drives the installation of an extension's software.
type Installer interface {
	Install(ctx context.Context) error
	IsInstalled(ctx context.Context) bool
	PreInstall(ctx context.Context) error
	PostInstall(ctx context.Context) error
	PreUninstall(ctx context.Context) error
}

// NopInstaller is the installer of an extension without software of its
// own. It always reports installed.
type NopInstaller struct{}

func (NopInstaller) Install(context.Context) error      { return nil }
func (NopInstaller) IsInstalled(context.Context) bool   { return true }
func (NopInstaller) PreInstall(context.Context) error   { return nil }
func (NopInstaller) PostInstall(context.Context) error  { return nil }
func (NopInstaller) PreUninstall(context.Context) error { return nil }

var _ Installer = NopInstaller{}

// LicenseChecker reports whether an extension is licensed.
type LicenseChecker interface {
	IsLicensed(ctx context.Context) bool
}

// Capability is what an extension declares about itself.
type Capability struct {
	ID string

	// Permissions are the domain permissions of the extension. Nil means
	// the extension declared none and ManagePermission(ID) applies; an
	// empty, non-nil slice means it has no permissions at all.
	Permissions []string

	// Installer is nil for extensions without software.
	Installer Installer

	// License is nil for extensions that need no license.
	License LicenseChecker
}

// NormalizeID returns the canonical, lowercase form of an extension id.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// ManagePermission returns the fallback permission name of an extension.
func ManagePermission(id string) string {
	return ManagePrefix + NormalizeID(id)
}

// EffectivePermissions returns the permissions to check for the extension.
func (c Capability) EffectivePermissions() []string {
	if c.Permissions == nil {
		return []string{ManagePermission(c.ID)}
	}
	return c.Permissions
}

// InstallerOrNop returns the installer, defaulting to NopInstaller.
func (c Capability) InstallerOrNop() Installer {
	if c.Installer == nil {
		return NopInstaller{}
	}
	return c.Installer
}
