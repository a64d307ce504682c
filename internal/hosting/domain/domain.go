// Package domain models the hosting objects an extension reads from the
// control panel: domains, clients, mailboxes and update settings.
package domain

import "strings"

// HostingType values stored for a domain.
const (
	HostingVirtual = "vrt_hst"
	HostingForward = "std_fwd"
	HostingFrame   = "frm_fwd"
	HostingNone    = "none"
)

const (
	// StatusActive is the status of a domain that is neither suspended
	// nor disabled.
	StatusActive = 0
	// PrimaryWebspace is the webspace id of a subscription's own domain.
	PrimaryWebspace = 0
	// WildcardPrefix starts the name of a wildcard domain.
	WildcardPrefix = "_"
	// ManagePrefix prefixes the default permission of an extension.
	ManagePrefix = "manage_"
)

// Domain is a domain hosted by the panel. A domain whose WebspaceID is zero
// is the primary domain of its subscription.
type Domain struct {
	ID          int64
	GUID        string
	Name        string
	DisplayName string
	ClientID    int64
	WebspaceID  int64
	HostingType string
	Status      int
	HomePath    string
}

// IsPrimary reports whether the domain owns its webspace.
func (d *Domain) IsPrimary() bool {
	return d.WebspaceID == PrimaryWebspace
}

// HasHosting reports whether the domain has virtual hosting.
func (d *Domain) HasHosting() bool {
	return d.HostingType == HostingVirtual
}

// IsActive reports whether the domain is not suspended or disabled.
func (d *Domain) IsActive() bool {
	return d.Status == StatusActive
}

// IsWildcard reports whether the domain is a wildcard domain.
func (d *Domain) IsWildcard() bool {
	return strings.HasPrefix(d.Name, WildcardPrefix)
}

// IsIDN reports whether the domain is an internationalized name, i.e. its
// ASCII name differs from the name shown to users.
func (d *Domain) IsIDN() bool {
	return d.DisplayName != "" && d.Name != d.DisplayName
}

// SameSubscription reports whether other lives in the same webspace as d.
func (d *Domain) SameSubscription(other *Domain) bool {
	return d.ClientID == other.ClientID &&
		d.HasHosting() && other.HasHosting() &&
		d.HomePath == other.HomePath
}

// ManagePermission returns the permission granting use of extension id.
func ManagePermission(id string) string {
	return ManagePrefix + id
}

// MailUser is a mailbox with its stored or decrypted password.
type MailUser struct {
	Email    string
	Password string
}

// MailPrefs are the mail preferences of a site.
type MailPrefs struct {
	MailService        bool
	NonexistentUser    string
	SpamProtectSign    bool
	Webmail            string
	WebmailCertificate string
}
