package domain

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// vendorMarkers are stripped from reported versions before comparison.
// Enterprise Linux hosts may report "el7" instead of "7".
var vendorMarkers = []string{"el"}

// NormalizeVersion converts an OS version string into a comparable semantic
// version ("v7.9.2009"). Leading zeros are dropped ("18.04" becomes
// "v18.4.0"). It returns "" when the version carries no leading number.
func NormalizeVersion(version string) string {
	v := strings.ToLower(strings.TrimSpace(version))
	for _, marker := range vendorMarkers {
		v = strings.ReplaceAll(v, marker, "")
	}

	segments := strings.Split(v, ".")
	parts := [3]int{}
	for i := 0; i < len(parts) && i < len(segments); i++ {
		digits := leadingDigits(segments[i])
		if digits == "" {
			if i == 0 {
				return ""
			}
			break
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			return ""
		}
		parts[i] = n
		if len(digits) != len(segments[i]) {
			// "7.9.2009 (Core)" style suffix ends the numeric part.
			break
		}
	}

	normalized := fmt.Sprintf("v%d.%d.%d", parts[0], parts[1], parts[2])
	if !semver.IsValid(normalized) {
		return ""
	}
	return normalized
}

func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

// CompareVersions compares two OS version strings. The result is 0 if
// a == b, -1 if a < b, and +1 if a > b. Unparsable versions sort first.
func CompareVersions(a, b string) int {
	return semver.Compare(NormalizeVersion(a), NormalizeVersion(b))
}

// VersionRange is the half-open interval [Min, Max).
type VersionRange struct {
	Min string
	Max string
}

// Contains reports whether version lies within the range.
func (r VersionRange) Contains(version string) bool {
	if NormalizeVersion(version) == "" {
		return false
	}
	if CompareVersions(version, r.Min) < 0 {
		return false
	}
	if CompareVersions(version, r.Max) >= 0 {
		return false
	}
	return true
}

// String renders the range in interval notation.
func (r VersionRange) String() string {
	return fmt.Sprintf("[%s, %s)", r.Min, r.Max)
}
