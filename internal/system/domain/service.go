// Package domain describes host services and panel components managed by
// an extension.
package domain

import (
	"errors"
	"strings"
)

// ErrEmptyUnit is returned for a service without a systemd unit.
var ErrEmptyUnit = errors.New("service has no systemd unit")

// Systemctl is the systemd control program.
const Systemctl = "systemctl"

// systemctl exit codes.
const (
	ExitOK           = 0
	ExitUnitNotFound = 4
)

// Service is a systemd unit shipped with an extension.
type Service struct {
	ID   string
	Name string
	Unit string
}

// NewService creates a service; the unit defaults to "<id>.service".
func NewService(id, name, unit string) (Service, error) {
	if unit == "" {
		unit = id
	}
	if unit == "" {
		return Service{}, ErrEmptyUnit
	}
	if !strings.Contains(unit, ".") {
		unit += ".service"
	}
	if name == "" {
		name = id
	}
	return Service{ID: id, Name: name, Unit: unit}, nil
}

// Status summarises a service query.
type Status struct {
	Configured bool
	Installed  bool
	Running    bool
}
