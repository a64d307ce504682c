// Package domain defines per-extension settings kept by the host.
package domain

import (
	"context"
	"errors"
)

// ErrModuleNotRegistered is returned when writing a setting for an
// extension the host does not know.
var ErrModuleNotRegistered = errors.New("module is not registered")

// Store reads and writes settings scoped by module id.
type Store interface {
	// Get returns the value and whether the setting exists.
	Get(ctx context.Context, module, name string) (string, bool, error)
	// Set creates or replaces a setting.
	Set(ctx context.Context, module, name, value string) error
}

// Well-known setting names.
const (
	SettingInstalling        = "installing"
	SettingPermissionDefault = "permission-default"
)
