package domain

import "context"

// DomainRepository reads domains from the panel database.
type DomainRepository interface {
	All(ctx context.Context, primaryOnly bool) ([]*Domain, error)
	ByClient(ctx context.Context, clientID int64, primaryOnly bool) ([]*Domain, error)
	ByGUID(ctx context.Context, guid string) (*Domain, error)
	ByID(ctx context.Context, id int64) (*Domain, error)
	ByName(ctx context.Context, name string) (*Domain, error)
	HasPermission(ctx context.Context, domainID int64, permission string) (bool, error)
}

// ClientRepository reads panel accounts.
type ClientRepository interface {
	ByID(ctx context.Context, id int64) (*Client, error)
	// CanAccessDomain reports whether reseller owns the domain directly or
	// through one of its customers.
	CanAccessDomain(ctx context.Context, resellerID, domainID int64) (bool, error)
}

// MailRepository reads mailboxes.
type MailRepository interface {
	ListUsers(ctx context.Context, domainID int64) ([]MailUser, error)
}

// PanelRepository reads panel-wide values.
type PanelRepository interface {
	Misc(ctx context.Context, params ...string) (map[string]string, error)
	ModuleVersion(ctx context.Context, module string) (version, release string, err error)
}

// MailAPI reaches the panel's remote API.
type MailAPI interface {
	MailPrefs(ctx context.Context, siteID int64) (MailPrefs, error)
	MailboxCount(ctx context.Context, domainID int64) (int, error)
	IsPoweruserModeEnabled(ctx context.Context) (bool, error)
}

// ActionLog submits action log entries.
type ActionLog interface {
	Submit(ctx context.Context, entry ActionLogEntry) error
}
