// Package domain models operating system platforms: a distribution plus a
// major-version bucket that selects package manager behaviour.
package domain

import "strings"

// OS is the operating system name as reported by the control panel.
type OS string

const (
	OSCentOS OS = "CentOS"
	OSDebian OS = "Debian"
	OSRedHat OS = "RedHat"
	OSUbuntu OS = "Ubuntu"
)

// Is reports whether name refers to this OS, ignoring case.
func (o OS) Is(name string) bool {
	return strings.EqualFold(string(o), strings.TrimSpace(name))
}

// Platform identifies a supported distribution and major version.
type Platform string

const (
	// Unknown is returned for any OS/version combination that is not supported.
	Unknown Platform = "UNKNOWN"

	// Red Hat Enterprise Linux and CentOS.
	Tikanga  Platform = "tikanga"
	Santiago Platform = "santiago"
	Maipo    Platform = "maipo"
	Ootpa    Platform = "ootpa"

	// Debian.
	Jessie  Platform = "jessie"
	Stretch Platform = "stretch"
	Buster  Platform = "buster"

	// Ubuntu.
	Xenial Platform = "xenial"
	Bionic Platform = "bionic"
	Focal  Platform = "focal"
)

// Version aliases for the code names above.
const (
	CentOS7    = Maipo
	CentOS8    = Ootpa
	RHEL7      = Maipo
	RHEL8      = Ootpa
	Debian8    = Jessie
	Debian9    = Stretch
	Debian10   = Buster
	Ubuntu1604 = Xenial
	Ubuntu1804 = Bionic
	Ubuntu2004 = Focal
)

// String returns the platform identifier.
func (p Platform) String() string {
	return string(p)
}

// IsKnown reports whether p is a supported platform.
func (p Platform) IsKnown() bool {
	_, ok := definitionFor(p)
	return ok
}

// Family returns the package manager family used on the platform.
func (p Platform) Family() Family {
	def, ok := definitionFor(p)
	if !ok {
		return FamilyNone
	}
	return def.family
}

// Family groups platforms that share a package manager.
type Family string

const (
	FamilyNone Family = ""
	// FamilyApt covers Debian-like platforms.
	FamilyApt Family = "apt"
	// FamilyYum covers RedHat 7 and older.
	FamilyYum Family = "yum"
	// FamilyDnf covers RedHat 8.
	FamilyDnf Family = "dnf"
)

type definition struct {
	platform Platform
	oses     []OS
	versions VersionRange
	family   Family
}

// definitions lists every supported platform. Ranges for one OS never overlap.
var definitions = []definition{
	{Ootpa, []OS{OSRedHat, OSCentOS}, VersionRange{Min: "8", Max: "9"}, FamilyDnf},
	{Maipo, []OS{OSRedHat, OSCentOS}, VersionRange{Min: "7", Max: "8"}, FamilyYum},
	{Santiago, []OS{OSRedHat, OSCentOS}, VersionRange{Min: "6", Max: "7"}, FamilyYum},
	{Tikanga, []OS{OSRedHat, OSCentOS}, VersionRange{Min: "5", Max: "6"}, FamilyYum},
	{Buster, []OS{OSDebian}, VersionRange{Min: "10", Max: "11"}, FamilyApt},
	{Stretch, []OS{OSDebian}, VersionRange{Min: "9", Max: "10"}, FamilyApt},
	{Jessie, []OS{OSDebian}, VersionRange{Min: "8", Max: "9"}, FamilyApt},
	{Focal, []OS{OSUbuntu}, VersionRange{Min: "20.04", Max: "20.10"}, FamilyApt},
	{Bionic, []OS{OSUbuntu}, VersionRange{Min: "18.04", Max: "18.10"}, FamilyApt},
	{Xenial, []OS{OSUbuntu}, VersionRange{Min: "16.04", Max: "16.10"}, FamilyApt},
}

func definitionFor(p Platform) (definition, bool) {
	for _, def := range definitions {
		if def.platform == p {
			return def, true
		}
	}
	return definition{}, false
}

// Platforms returns every supported platform.
func Platforms() []Platform {
	platforms := make([]Platform, 0, len(definitions))
	for _, def := range definitions {
		platforms = append(platforms, def.platform)
	}
	return platforms
}

// Match maps an OS name and version to a platform. The second return value
// is false when nothing matches, in which case the platform is Unknown.
func Match(osName, osVersion string) (Platform, bool) {
	for _, def := range definitions {
		if def.matches(osName, osVersion, false) {
			return def.platform, true
		}
	}
	return Unknown, false
}

// Matches reports whether osName and osVersion fall within platform p.
// With strict set, CentOS is not accepted where Red Hat is.
func Matches(p Platform, osName, osVersion string, strict bool) bool {
	def, ok := definitionFor(p)
	if !ok {
		return false
	}
	return def.matches(osName, osVersion, strict)
}

func (d definition) matches(osName, osVersion string, strict bool) bool {
	if strict && !OSRedHat.Is(osName) && d.supports(OSRedHat) {
		return false
	}
	if !d.supportsName(osName) {
		return false
	}
	return d.versions.Contains(osVersion)
}

func (d definition) supports(os OS) bool {
	for _, candidate := range d.oses {
		if candidate == os {
			return true
		}
	}
	return false
}

func (d definition) supportsName(name string) bool {
	for _, candidate := range d.oses {
		if candidate.Is(name) {
			return true
		}
	}
	return false
}
