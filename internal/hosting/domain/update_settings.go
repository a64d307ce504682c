package domain

// Branch is the panel upgrade channel.
type Branch string

const (
	BranchNone    Branch = ""
	BranchCurrent Branch = "current"
	BranchRelease Branch = "release"
	BranchStable  Branch = "stable"
)

// Bit positions of the packed update configuration.
const (
	bitUpdaterEnabled = 1 << iota
	bitSystemPackageUpdates
	bitThirdPartyUpgrades
	bitSafeUpdatesOnly
	bitBranchCurrent
	bitBranchRelease
	bitBranchStable
)

// Keys of the misc table read into UpdateSettings.
const (
	MiscDisableUpdater       = "disable_updater"
	MiscSystemPackageUpdates = "automaticSystemPackageUpdates"
	MiscThirdPartyUpgrades   = "autoupgrade_third_party"
	MiscSafeUpdatesOnly      = "systemPackageUpdatesSafeOnly"
	MiscAutoupgradeBranch    = "autoupgrade_branch"
)

// UpdateSettings is the panel's update and upgrade configuration.
type UpdateSettings struct {
	UpdaterEnabled       bool
	SystemPackageUpdates bool
	ThirdPartyUpgrades   bool
	SafeUpdatesOnly      bool
	Branch               Branch
}

// UpdateSettingsFromMisc builds settings from misc table values.
func UpdateSettingsFromMisc(misc map[string]string) UpdateSettings {
	s := UpdateSettings{
		UpdaterEnabled:       misc[MiscDisableUpdater] == "false",
		SystemPackageUpdates: misc[MiscSystemPackageUpdates] == "true",
		ThirdPartyUpgrades:   misc[MiscThirdPartyUpgrades] == "true",
		SafeUpdatesOnly:      misc[MiscSafeUpdatesOnly] == "true",
	}
	switch b := Branch(misc[MiscAutoupgradeBranch]); b {
	case BranchCurrent, BranchRelease, BranchStable:
		s.Branch = b
	}
	return s
}

// Bits packs the settings into the integer reported in statistics.
func (s UpdateSettings) Bits() int {
	bits := 0
	if s.UpdaterEnabled {
		bits |= bitUpdaterEnabled
	}
	if s.SystemPackageUpdates {
		bits |= bitSystemPackageUpdates
	}
	if s.ThirdPartyUpgrades {
		bits |= bitThirdPartyUpgrades
	}
	if s.SafeUpdatesOnly {
		bits |= bitSafeUpdatesOnly
	}
	switch s.Branch {
	case BranchCurrent:
		bits |= bitBranchCurrent
	case BranchRelease:
		bits |= bitBranchRelease
	case BranchStable:
		bits |= bitBranchStable
	}
	return bits
}

// UpdateSettingsFromBits unpacks Bits. When more than one branch bit is
// set, the earliest branch wins.
func UpdateSettingsFromBits(bits int) UpdateSettings {
	s := UpdateSettings{
		UpdaterEnabled:       bits&bitUpdaterEnabled != 0,
		SystemPackageUpdates: bits&bitSystemPackageUpdates != 0,
		ThirdPartyUpgrades:   bits&bitThirdPartyUpgrades != 0,
		SafeUpdatesOnly:      bits&bitSafeUpdatesOnly != 0,
	}
	switch {
	case bits&bitBranchCurrent != 0:
		s.Branch = BranchCurrent
	case bits&bitBranchRelease != 0:
		s.Branch = BranchRelease
	case bits&bitBranchStable != 0:
		s.Branch = BranchStable
	}
	return s
}
