package application

import (
	"context"
	"errors"

	"github.com/kolabsys/phlesk/internal/hosting/domain"
)

type mockDomains struct {
	domains     []*domain.Domain
	permissions map[int64]map[string]bool
	err         error
}

func (m *mockDomains) All(ctx context.Context, primaryOnly bool) ([]*domain.Domain, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.Domain
	for _, d := range m.domains {
		if !primaryOnly || d.IsPrimary() {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDomains) ByClient(ctx context.Context, clientID int64, primaryOnly bool) ([]*domain.Domain, error) {
	all, err := m.All(ctx, primaryOnly)
	if err != nil {
		return nil, err
	}
	var out []*domain.Domain
	for _, d := range all {
		if d.ClientID == clientID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDomains) find(match func(*domain.Domain) bool) (*domain.Domain, error) {
	for _, d := range m.domains {
		if match(d) {
			return d, nil
		}
	}
	return nil, domain.ErrDomainNotFound
}

func (m *mockDomains) ByGUID(ctx context.Context, guid string) (*domain.Domain, error) {
	return m.find(func(d *domain.Domain) bool { return d.GUID == guid })
}

func (m *mockDomains) ByID(ctx context.Context, id int64) (*domain.Domain, error) {
	return m.find(func(d *domain.Domain) bool { return d.ID == id })
}

func (m *mockDomains) ByName(ctx context.Context, name string) (*domain.Domain, error) {
	return m.find(func(d *domain.Domain) bool { return d.Name == name })
}

func (m *mockDomains) HasPermission(ctx context.Context, domainID int64, permission string) (bool, error) {
	return m.permissions[domainID][permission], nil
}

type mockClients struct {
	// access maps reseller id to the domain ids it can access.
	access map[int64][]int64
}

func (m *mockClients) ByID(ctx context.Context, id int64) (*domain.Client, error) {
	return nil, domain.ErrClientNotFound
}

func (m *mockClients) CanAccessDomain(ctx context.Context, resellerID, domainID int64) (bool, error) {
	for _, id := range m.access[resellerID] {
		if id == domainID {
			return true, nil
		}
	}
	return false, nil
}

type mockMail struct {
	users map[int64][]domain.MailUser
}

func (m *mockMail) ListUsers(ctx context.Context, domainID int64) ([]domain.MailUser, error) {
	return append([]domain.MailUser(nil), m.users[domainID]...), nil
}

type mockAPI struct {
	mail      map[int64]bool
	mailboxes map[int64]int
	err       error
}

func (m *mockAPI) MailPrefs(ctx context.Context, siteID int64) (domain.MailPrefs, error) {
	if m.err != nil {
		return domain.MailPrefs{}, m.err
	}
	return domain.MailPrefs{MailService: m.mail[siteID]}, nil
}

func (m *mockAPI) MailboxCount(ctx context.Context, domainID int64) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.mailboxes[domainID], nil
}

func (m *mockAPI) IsPoweruserModeEnabled(ctx context.Context) (bool, error) {
	return false, nil
}

type mockPanel struct {
	misc    map[string]string
	version string
	release string
	err     error
}

func (m *mockPanel) Misc(ctx context.Context, params ...string) (map[string]string, error) {
	out := map[string]string{}
	for _, p := range params {
		if v, ok := m.misc[p]; ok {
			out[p] = v
		}
	}
	return out, nil
}

func (m *mockPanel) ModuleVersion(ctx context.Context, module string) (string, string, error) {
	if m.err != nil {
		return "", "", m.err
	}
	return m.version, m.release, nil
}

type staticModule string

func (s staticModule) ModuleID() string { return string(s) }

var errBoom = errors.New("boom")

// fixture: client 3 owns alice.example (primary, hosting, mail) with a
// subdomain in the same webspace and a wildcard; client 4 owns bob.example
// (forward only); client 5 owns an IDN.
func fixtureDomains() *mockDomains {
	return &mockDomains{
		domains: []*domain.Domain{
			{ID: 10, GUID: "g-10", Name: "alice.example", DisplayName: "alice.example", ClientID: 3, HostingType: domain.HostingVirtual, HomePath: "/vhosts/alice"},
			{ID: 11, GUID: "g-11", Name: "blog.alice.example", DisplayName: "blog.alice.example", ClientID: 3, WebspaceID: 10, HostingType: domain.HostingVirtual, HomePath: "/vhosts/alice"},
			{ID: 12, GUID: "g-12", Name: "_.alice.example", DisplayName: "_.alice.example", ClientID: 3, WebspaceID: 10, HostingType: domain.HostingVirtual, HomePath: "/vhosts/alice"},
			{ID: 20, GUID: "g-20", Name: "bob.example", DisplayName: "bob.example", ClientID: 4, HostingType: domain.HostingForward},
			{ID: 30, GUID: "g-30", Name: "xn--mnchen-3ya.de", DisplayName: "münchen.de", ClientID: 5, HostingType: domain.HostingVirtual, HomePath: "/vhosts/muenchen", Status: 16},
		},
		permissions: map[int64]map[string]bool{
			10: {"manage_kolab": true},
			30: {"manage_kolab": true},
		},
	}
}

func fixtureMail() *mockMail {
	return &mockMail{users: map[int64][]domain.MailUser{
		10: {{Email: "info@alice.example", Password: "p1"}, {Email: "sales@alice.example", Password: "p2"}},
		11: {{Email: "me@blog.alice.example", Password: "p3"}},
		30: {{Email: "a@xn--mnchen-3ya.de", Password: "p4"}},
	}}
}

func fixtureAPI() *mockAPI {
	return &mockAPI{
		mail:      map[int64]bool{10: true, 11: true, 30: true},
		mailboxes: map[int64]int{10: 3, 20: 1, 30: 5},
	}
}

func newFixtureDirectory() *Directory {
	return NewDirectory(fixtureDomains(), &mockClients{access: map[int64][]int64{2: {20, 30}}}, fixtureMail(), fixtureAPI(), nil)
}
