// Package panel reads properties of the panel installation itself.
package panel

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultLicensePropertiesPath is where the panel exports the properties
// of its own license.
const DefaultLicensePropertiesPath = "/usr/local/psa/var/license.properties"

// Panel license property names.
const (
	PropertyCanManageCustomers = "can-manage-customers"
	PropertyCanManageResellers = "can-manage-resellers"
)

// LicenseProperties are the key/value properties of the panel license.
// The file spells property names with underscores, so
// "can-manage-customers" is stored as "can_manage_customers".
type LicenseProperties map[string]string

// Bool returns a property as a boolean; unset or malformed is false.
func (p LicenseProperties) Bool(name string) bool {
	v, err := strconv.ParseBool(p[strings.ReplaceAll(name, "-", "_")])
	return err == nil && v
}

// CanManagePlans reports whether service plans, and so permissions, can be
// managed: the license must allow both customers and resellers.
func (p LicenseProperties) CanManagePlans() bool {
	return p.Bool(PropertyCanManageCustomers) && p.Bool(PropertyCanManageResellers)
}

// PropertiesFile reads license properties from a KEY=value file.
type PropertiesFile struct {
	path string
}

// NewPropertiesFile creates a reader for path.
func NewPropertiesFile(path string) *PropertiesFile {
	if path == "" {
		path = DefaultLicensePropertiesPath
	}
	return &PropertiesFile{path: path}
}

// LicenseProperties reads the file. A missing file yields no properties.
func (f *PropertiesFile) LicenseProperties() (LicenseProperties, error) {
	values, err := godotenv.Read(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return LicenseProperties{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read panel license properties: %w", err)
	}
	return LicenseProperties(values), nil
}

// CanManagePlans reads the file and reports LicenseProperties.CanManagePlans.
func (f *PropertiesFile) CanManagePlans() (bool, error) {
	props, err := f.LicenseProperties()
	if err != nil {
		return false, err
	}
	return props.CanManagePlans(), nil
}
