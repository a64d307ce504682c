package domain

import "fmt"

// Actions submitted to the panel action log.
const (
	ActionEnableDomain  = "enable_domain"
	ActionDisableDomain = "disable_domain"
)

// ActionDescriptions lists the actions an extension declares to the panel.
var ActionDescriptions = map[string]string{
	ActionEnableDomain:  "Enable Integration for Domain",
	ActionDisableDomain: "Disable Integration for Domain",
}

// ActionLogEntry records that a module changed its integration with an
// object. Listeners subscribe to "ext_<module>_<action>".
type ActionLogEntry struct {
	Action    string   `json:"action"`
	Module    string   `json:"module"`
	ObjectID  int64    `json:"object_id"`
	OldValues []string `json:"old_values"`
	NewValues []string `json:"new_values"`
}

// EnableDomainEntry records that module now integrates with the domain.
func EnableDomainEntry(module string, domainID int64) ActionLogEntry {
	return ActionLogEntry{
		Action:    ActionEnableDomain,
		Module:    module,
		ObjectID:  domainID,
		OldValues: []string{},
		NewValues: []string{module},
	}
}

// DisableDomainEntry records that module stopped integrating with the domain.
func DisableDomainEntry(module string, domainID int64) ActionLogEntry {
	return ActionLogEntry{
		Action:    ActionDisableDomain,
		Module:    module,
		ObjectID:  domainID,
		OldValues: []string{module},
		NewValues: []string{},
	}
}

// RoutingKey is the name listeners filter on.
func (e ActionLogEntry) RoutingKey() string {
	return fmt.Sprintf("ext_%s_%s", e.Module, e.Action)
}
