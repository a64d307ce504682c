package domain

import (
	"bufio"
	"strings"
)

// InstalledComponents maps a panel component name to its version.
type InstalledComponents map[string]string

// ParseComponentList reads "name: version" lines as printed by the panel
// package manager. Lines without a version are skipped.
func ParseComponentList(output string) InstalledComponents {
	components := InstalledComponents{}
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		name, version, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		version = strings.TrimSpace(version)
		if name == "" || version == "" {
			continue
		}
		components[name] = version
	}
	return components
}

// Has reports whether name is installed.
func (c InstalledComponents) Has(name string) bool {
	_, ok := c[name]
	return ok
}
