package domain

import "errors"

var (
	// ErrUnknownPlatform indicates the host OS is not a supported platform.
	ErrUnknownPlatform = errors.New("unknown platform")

	// ErrOSReleaseUnreadable indicates the OS identification could not be read.
	ErrOSReleaseUnreadable = errors.New("os release information unreadable")
)
