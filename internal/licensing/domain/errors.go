package domain

import "errors"

var (
	// ErrLicenseUnavailable indicates the license store holds no license.
	ErrLicenseUnavailable = errors.New("license not available")

	// ErrLicenseExpired indicates the license validity window has passed.
	ErrLicenseExpired = errors.New("license expired")

	// ErrLicenseInvalid indicates the license grants no seats.
	ErrLicenseInvalid = errors.New("license invalid")

	// ErrMalformedCertificate indicates the key body is not a parsable X.509 certificate.
	ErrMalformedCertificate = errors.New("malformed license certificate")

	// ErrUsageUnavailable indicates the current seat usage could not be counted.
	ErrUsageUnavailable = errors.New("license usage count unavailable")
)
