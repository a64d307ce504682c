package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolabsys/phlesk/internal/hosting/domain"
)

func TestDomain_Predicates(t *testing.T) {
	tests := []struct {
		name        string
		d           domain.Domain
		wantPrimary bool
		wantHosting bool
		wantActive  bool
		wantWild    bool
		wantIDN     bool
	}{
		{
			name:        "primary with hosting",
			d:           domain.Domain{Name: "example.com", DisplayName: "example.com", HostingType: domain.HostingVirtual},
			wantPrimary: true, wantHosting: true, wantActive: true,
		},
		{
			name:       "subdomain forward",
			d:          domain.Domain{Name: "sub.example.com", WebspaceID: 3, HostingType: domain.HostingForward},
			wantActive: true,
		},
		{
			name:        "wildcard suspended",
			d:           domain.Domain{Name: "_.example.com", Status: 16},
			wantPrimary: true, wantWild: true,
		},
		{
			name:        "idn",
			d:           domain.Domain{Name: "xn--mnchen-3ya.de", DisplayName: "münchen.de"},
			wantPrimary: true, wantActive: true, wantIDN: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantPrimary, tt.d.IsPrimary())
			assert.Equal(t, tt.wantHosting, tt.d.HasHosting())
			assert.Equal(t, tt.wantActive, tt.d.IsActive())
			assert.Equal(t, tt.wantWild, tt.d.IsWildcard())
			assert.Equal(t, tt.wantIDN, tt.d.IsIDN())
		})
	}
}

func TestDomain_SameSubscription(t *testing.T) {
	a := &domain.Domain{ClientID: 1, HostingType: domain.HostingVirtual, HomePath: "/var/www/vhosts/a"}
	b := &domain.Domain{ClientID: 1, HostingType: domain.HostingVirtual, HomePath: "/var/www/vhosts/a"}
	c := &domain.Domain{ClientID: 1, HostingType: domain.HostingVirtual, HomePath: "/var/www/vhosts/c"}
	d := &domain.Domain{ClientID: 1, HostingType: domain.HostingNone, HomePath: "/var/www/vhosts/a"}

	assert.True(t, a.SameSubscription(b))
	assert.False(t, a.SameSubscription(c))
	assert.False(t, a.SameSubscription(d))
}

func TestSession_IsSystem(t *testing.T) {
	var nilSession *domain.Session
	assert.True(t, nilSession.IsSystem())
	assert.True(t, (&domain.Session{}).IsSystem())
	assert.False(t, (&domain.Session{Client: &domain.Client{Type: domain.ClientCustomer}}).IsSystem())
}

func TestUpdateSettings_Bits(t *testing.T) {
	tests := []struct {
		name     string
		misc     map[string]string
		wantBits int
	}{
		{name: "nothing set", misc: map[string]string{}, wantBits: 0},
		{name: "updater enabled", misc: map[string]string{"disable_updater": "false"}, wantBits: 1},
		{name: "updater disabled", misc: map[string]string{"disable_updater": "true"}, wantBits: 0},
		{
			name: "all flags and stable",
			misc: map[string]string{
				"disable_updater":               "false",
				"automaticSystemPackageUpdates": "true",
				"autoupgrade_third_party":       "true",
				"systemPackageUpdatesSafeOnly":  "true",
				"autoupgrade_branch":            "stable",
			},
			wantBits: 1 | 2 | 4 | 8 | 64,
		},
		{name: "current branch", misc: map[string]string{"autoupgrade_branch": "current"}, wantBits: 16},
		{name: "release branch", misc: map[string]string{"autoupgrade_branch": "release"}, wantBits: 32},
		{name: "unknown branch", misc: map[string]string{"autoupgrade_branch": "testing"}, wantBits: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := domain.UpdateSettingsFromMisc(tt.misc)
			assert.Equal(t, tt.wantBits, s.Bits())
			assert.Equal(t, s, domain.UpdateSettingsFromBits(tt.wantBits))
		})
	}
}

func TestActionLogEntry(t *testing.T) {
	enable := domain.EnableDomainEntry("kolab", 42)
	assert.Equal(t, "ext_kolab_enable_domain", enable.RoutingKey())
	assert.Empty(t, enable.OldValues)
	assert.Equal(t, []string{"kolab"}, enable.NewValues)

	disable := domain.DisableDomainEntry("kolab", 42)
	assert.Equal(t, "ext_kolab_disable_domain", disable.RoutingKey())
	assert.Equal(t, []string{"kolab"}, disable.OldValues)

	raw, err := json.Marshal(disable)
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"disable_domain","module":"kolab","object_id":42,"old_values":["kolab"],"new_values":[]}`, string(raw))

	assert.Contains(t, domain.ActionDescriptions, domain.ActionEnableDomain)
	assert.Contains(t, domain.ActionDescriptions, domain.ActionDisableDomain)
}

func TestManagePermission(t *testing.T) {
	assert.Equal(t, "manage_seafile", domain.ManagePermission("seafile"))
}
