package domain

import "errors"

var (
	// ErrDomainNotFound is returned when no domain matches a lookup.
	ErrDomainNotFound = errors.New("domain not found")
	// ErrNoPrimaryDomain is returned when a subscription has no primary domain.
	ErrNoPrimaryDomain = errors.New("subscription has no primary domain")
	// ErrClientNotFound is returned when a client id is unknown.
	ErrClientNotFound = errors.New("client not found")
	// ErrModuleNotFound is returned when an extension is not registered.
	ErrModuleNotFound = errors.New("module not found")
	// ErrRPCFailed is returned when the panel API reports an error.
	ErrRPCFailed = errors.New("panel API request failed")
)
