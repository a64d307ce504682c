package domain

import "errors"

var (
	ErrMissingID                  = errors.New("extension id is required")
	ErrExtensionNotFound          = errors.New("extension not found")
	ErrExtensionAlreadyRegistered = errors.New("extension already registered")
)
