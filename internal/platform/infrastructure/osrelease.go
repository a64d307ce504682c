// Package infrastructure reads the host operating system identification.
package infrastructure

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kolabsys/phlesk/internal/platform/domain"
)

// DefaultOSReleasePath is the freedesktop os-release location.
const DefaultOSReleasePath = "/etc/os-release"

// osReleaseIDs maps os-release ID values to product OS names.
var osReleaseIDs = map[string]domain.OS{
	"centos":    domain.OSCentOS,
	"almalinux": domain.OSCentOS,
	"rocky":     domain.OSCentOS,
	"rhel":      domain.OSRedHat,
	"redhat":    domain.OSRedHat,
	"debian":    domain.OSDebian,
	"ubuntu":    domain.OSUbuntu,
}

// OSReleaseSource reads OS information from an os-release file.
type OSReleaseSource struct {
	path string
}

// NewOSReleaseSource creates a source for the given file. An empty path
// selects DefaultOSReleasePath.
func NewOSReleaseSource(path string) *OSReleaseSource {
	if path == "" {
		path = DefaultOSReleasePath
	}
	return &OSReleaseSource{path: path}
}

// OSInfo implements domain.InfoSource.
func (s *OSReleaseSource) OSInfo() (domain.OSInfo, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return domain.OSInfo{}, fmt.Errorf("%w: %v", domain.ErrOSReleaseUnreadable, err)
	}
	defer file.Close()

	return ParseOSRelease(file)
}

// ParseOSRelease parses os-release content. Only ID and VERSION_ID are used.
func ParseOSRelease(r io.Reader) (domain.OSInfo, error) {
	values := make(map[string]string)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		values[key] = strings.Trim(value, `"'`)
	}
	if err := scanner.Err(); err != nil {
		return domain.OSInfo{}, fmt.Errorf("%w: %v", domain.ErrOSReleaseUnreadable, err)
	}

	id := strings.ToLower(values["ID"])
	if id == "" {
		return domain.OSInfo{}, fmt.Errorf("%w: no ID field", domain.ErrOSReleaseUnreadable)
	}

	name := id
	if os, ok := osReleaseIDs[id]; ok {
		name = string(os)
	}

	return domain.OSInfo{Name: name, Version: values["VERSION_ID"]}, nil
}

// StaticSource returns fixed OS information, used for configuration overrides.
type StaticSource struct {
	Info domain.OSInfo
}

// OSInfo implements domain.InfoSource.
func (s StaticSource) OSInfo() (domain.OSInfo, error) {
	return s.Info, nil
}
