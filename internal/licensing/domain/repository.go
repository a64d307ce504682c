package domain

import "context"

// Store supplies the license of the current extension.
type Store interface {
	// Load retrieves the license.
	// Returns nil, nil if no license exists.
	Load(ctx context.Context) (*License, error)
}

// Repository is a Store that can also be written.
type Repository interface {
	Store

	// Save persists a license.
	Save(ctx context.Context, license *License) error

	// Delete removes the license.
	Delete(ctx context.Context) error

	// Exists checks if a license exists.
	Exists(ctx context.Context) bool
}

// UsageCounter counts the seats currently in use.
type UsageCounter interface {
	LicenseCount(ctx context.Context) (int, error)
}

// Activator runs system steps once a license has been obtained, such as
// enabling package repositories.
type Activator interface {
	Activate(ctx context.Context, license *License) bool
}
