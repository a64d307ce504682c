package domain

import "strings"

// OSInfo is the operating system identification of the host.
type OSInfo struct {
	Name    string
	Version string
}

// Distribution returns the OS name in canonical spelling when it is one of
// the supported OS names, and the raw name otherwise.
func (i OSInfo) Distribution() string {
	for _, os := range []OS{OSCentOS, OSDebian, OSRedHat, OSUbuntu} {
		if os.Is(i.Name) {
			return string(os)
		}
	}
	return strings.TrimSpace(i.Name)
}

// InfoSource supplies the host OS identification.
type InfoSource interface {
	OSInfo() (OSInfo, error)
}
