package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolabsys/phlesk/internal/hosting/domain"
	settingsdomain "github.com/kolabsys/phlesk/internal/settings/domain"
)

type recordingActionLog struct {
	entries []domain.ActionLogEntry
	err     error
}

func (r *recordingActionLog) Submit(ctx context.Context, entry domain.ActionLogEntry) error {
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, entry)
	return nil
}

func TestIntegration_EnableDisable(t *testing.T) {
	log := &recordingActionLog{}
	integration := NewIntegration(log, staticModule("kolab"), nil)
	dom := &domain.Domain{ID: 10, Name: "alice.example"}
	ctx := context.Background()

	require.NoError(t, integration.EnableIntegration(ctx, dom))
	require.NoError(t, integration.DisableIntegration(ctx, dom))

	require.Len(t, log.entries, 2)
	assert.Equal(t, "ext_kolab_enable_domain", log.entries[0].RoutingKey())
	assert.Equal(t, []string{"kolab"}, log.entries[0].NewValues)
	assert.Equal(t, int64(10), log.entries[0].ObjectID)
	assert.Equal(t, "ext_kolab_disable_domain", log.entries[1].RoutingKey())
	assert.Equal(t, []string{"kolab"}, log.entries[1].OldValues)
}

func TestIntegration_SubmitError(t *testing.T) {
	integration := NewIntegration(&recordingActionLog{err: errBoom}, staticModule("kolab"), nil)

	err := integration.EnableIntegration(context.Background(), &domain.Domain{ID: 1})

	assert.ErrorIs(t, err, errBoom)
}

type stubPlans struct {
	can bool
	err error
}

func (s stubPlans) CanManagePlans() (bool, error) { return s.can, s.err }

type memorySettings struct {
	values map[string]string
	sets   int
}

func (m *memorySettings) Get(ctx context.Context, name string) (string, bool) {
	v, ok := m.values[name]
	return v, ok
}

func (m *memorySettings) Set(ctx context.Context, name, value string) error {
	if m.values == nil {
		m.values = map[string]string{}
	}
	m.values[name] = value
	m.sets++
	return nil
}

func TestDefaultPermission_Resolve(t *testing.T) {
	tests := []struct {
		name      string
		plans     stubPlans
		stored    map[string]string
		domains   *mockDomains
		want      bool
		wantStore string
		wantSets  int
	}{
		{
			name:      "no plan management always grants",
			plans:     stubPlans{can: false},
			stored:    map[string]string{settingsdomain.SettingPermissionDefault: "0"},
			domains:   fixtureDomains(),
			want:      true,
			wantStore: "1",
			wantSets:  1,
		},
		{
			name:      "stored value wins",
			plans:     stubPlans{can: true},
			stored:    map[string]string{settingsdomain.SettingPermissionDefault: "0"},
			domains:   &mockDomains{},
			want:      false,
			wantStore: "0",
		},
		{
			name:      "first use on empty panel grants",
			plans:     stubPlans{can: true},
			domains:   &mockDomains{},
			want:      true,
			wantStore: "1",
			wantSets:  1,
		},
		{
			name:      "first use with existing domains denies",
			plans:     stubPlans{can: true},
			domains:   fixtureDomains(),
			want:      false,
			wantStore: "0",
			wantSets:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := &memorySettings{values: tt.stored}
			p := NewDefaultPermission(tt.plans, settings, tt.domains, nil)

			got, err := p.Resolve(context.Background())

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantStore, settings.values[settingsdomain.SettingPermissionDefault])
			assert.Equal(t, tt.wantSets, settings.sets)
		})
	}
}

func TestDefaultPermission_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewDefaultPermission(stubPlans{err: errBoom}, &memorySettings{}, fixtureDomains(), nil).Resolve(ctx)
	assert.ErrorIs(t, err, errBoom)

	_, err = NewDefaultPermission(stubPlans{can: true}, &memorySettings{}, &mockDomains{err: errBoom}, nil).Resolve(ctx)
	assert.ErrorIs(t, err, errBoom)
}

func TestMailboxCounter_LicenseCount(t *testing.T) {
	counter := NewMailboxCounter(fixtureDomains(), fixtureAPI(), nil)

	n, err := counter.LicenseCount(context.Background())

	require.NoError(t, err)
	// alice 3 + bob 1; the suspended IDN domain is skipped.
	assert.Equal(t, 4, n)
}

func TestMailboxCounter_APIError(t *testing.T) {
	counter := NewMailboxCounter(fixtureDomains(), &mockAPI{err: errBoom}, nil)

	_, err := counter.LicenseCount(context.Background())

	assert.ErrorIs(t, err, errBoom)
}

type stubExtensions struct {
	permissions []string
	installed   bool
}

func (s stubExtensions) Permissions(target string) []string { return s.permissions }

func (s stubExtensions) IsInstalled(ctx context.Context, target string) bool { return s.installed }

type stubLicense struct {
	licensed bool
	limit    int
}

func (s stubLicense) IsLicensed(ctx context.Context) bool { return s.licensed }

func (s stubLicense) LicenseLimit(ctx context.Context) int { return s.limit }

func newFixtureStatistics() *Statistics {
	panel := &mockPanel{
		misc: map[string]string{
			domain.MiscDisableUpdater:    "false",
			domain.MiscAutoupgradeBranch: "stable",
		},
		version: "1.0",
		release: "2",
	}
	extensions := stubExtensions{permissions: []string{"manage_kolab"}, installed: true}
	return NewStatistics(newFixtureDirectory(), panel, extensions, staticModule("kolab"), nil)
}

func TestStatistics_Collect(t *testing.T) {
	stats, err := newFixtureStatistics().Collect(context.Background())
	require.NoError(t, err)

	assert.Nil(t, stats.Licensed)
	assert.Equal(t, NotAvailable, stats.NumLicensed)
	assert.Equal(t, "1.0-2", stats.Version)
	assert.True(t, stats.Installed)
	assert.Equal(t, 65, stats.UpdateConfig)

	assert.Equal(t, Counters{
		NumTotal:       5,
		NumPrimary:     3,
		NumHosting:     4,
		NumMailservice: 3,
		NumWildcard:    1,
		NumIDN:         1,
		NumEligible:    2,
		Permissions:    map[string]int{"manage_kolab": 2},
	}, stats.Domains)

	assert.Equal(t, Counters{
		NumTotal:       4,
		NumPrimary:     3,
		NumHosting:     4,
		NumMailservice: 4,
		NumWildcard:    0,
		NumIDN:         1,
		NumEligible:    3,
		Permissions:    map[string]int{"manage_kolab": 3},
	}, stats.Users)
}

func TestStatistics_WithLicense(t *testing.T) {
	s := newFixtureStatistics()
	s.SetLicense(stubLicense{licensed: true, limit: 25})

	stats, err := s.Collect(context.Background())
	require.NoError(t, err)

	require.NotNil(t, stats.Licensed)
	assert.True(t, *stats.Licensed)
	assert.Equal(t, 25, stats.NumLicensed)
}

func TestStatistics_VersionUnregistered(t *testing.T) {
	s := NewStatistics(newFixtureDirectory(), &mockPanel{err: domain.ErrModuleNotFound}, stubExtensions{}, staticModule("kolab"), nil)

	assert.Equal(t, "", s.Version(context.Background()))
}
