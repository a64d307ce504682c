// Package application answers questions about the panel's domains on
// behalf of an extension.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kolabsys/phlesk/internal/hosting/domain"
	"github.com/kolabsys/phlesk/internal/shared/infrastructure/crypto"
)

// DomainFilter is an extension-defined predicate applied by AllDomains.
type DomainFilter func(ctx context.Context, d *domain.Domain) bool

// Filter selects domains in AllDomains.
type Filter struct {
	// PrimaryOnly drops subdomains and aliases.
	PrimaryOnly bool
	// Hosting keeps only domains with virtual hosting.
	Hosting bool
	// Mail keeps only domains with mail service.
	Mail bool
	// Filters names registered DomainFilters that must all accept the
	// domain. Unknown names are ignored.
	Filters []string
}

// Directory looks up domains the way the current session sees them.
type Directory struct {
	domains   domain.DomainRepository
	clients   domain.ClientRepository
	mail      domain.MailRepository
	api       domain.MailAPI
	decrypter crypto.Encrypter
	logger    *slog.Logger

	mu      sync.RWMutex
	filters map[string]DomainFilter
}

// NewDirectory creates a directory.
func NewDirectory(
	domains domain.DomainRepository,
	clients domain.ClientRepository,
	mail domain.MailRepository,
	api domain.MailAPI,
	logger *slog.Logger,
) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{
		domains: domains,
		clients: clients,
		mail:    mail,
		api:     api,
		logger:  logger,
		filters: make(map[string]DomainFilter),
	}
}

// SetDecrypter sets the cipher used by ListUsers to decrypt passwords.
func (d *Directory) SetDecrypter(dec crypto.Encrypter) {
	d.decrypter = dec
}

// RegisterFilter makes a named filter available to AllDomains.
func (d *Directory) RegisterFilter(name string, filter DomainFilter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filters[name] = filter
}

func (d *Directory) filter(name string) (DomainFilter, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	f, ok := d.filters[name]
	return f, ok
}

// AccessibleDomains returns the domains visible to session: all of them for
// the administrator or a system session, the domains of its customers for a
// reseller, and its own domains for a customer.
func (d *Directory) AccessibleDomains(ctx context.Context, session *domain.Session, primaryOnly bool) ([]*domain.Domain, error) {
	if session.IsSystem() || session.Client.IsAdmin() {
		return d.domains.All(ctx, primaryOnly)
	}

	client := session.Client
	if !client.IsReseller() {
		return d.domains.ByClient(ctx, client.ID, primaryOnly)
	}

	all, err := d.domains.All(ctx, primaryOnly)
	if err != nil {
		return nil, err
	}
	var accessible []*domain.Domain
	for _, dom := range all {
		ok, err := d.clients.CanAccessDomain(ctx, client.ID, dom.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			accessible = append(accessible, dom)
		}
	}
	return accessible, nil
}

// AllDomains returns the accessible domains that pass f.
func (d *Directory) AllDomains(ctx context.Context, session *domain.Session, f Filter) ([]*domain.Domain, error) {
	domains, err := d.AccessibleDomains(ctx, session, f.PrimaryOnly)
	if err != nil {
		return nil, err
	}

	var results []*domain.Domain
	for _, dom := range domains {
		if f.Hosting && !d.HasHosting(ctx, dom) {
			continue
		}
		if f.Mail && !d.HasMailService(ctx, dom) {
			continue
		}
		if !d.passesFilters(ctx, dom, f.Filters) {
			continue
		}
		results = append(results, dom)
	}
	return results, nil
}

func (d *Directory) passesFilters(ctx context.Context, dom *domain.Domain, names []string) bool {
	keep := true
	for _, name := range names {
		filter, ok := d.filter(name)
		if !ok {
			d.logger.Debug("unknown domain filter", "filter", name)
			continue
		}
		if !filter(ctx, dom) {
			keep = false
		}
	}
	return keep
}

// DomainByGUID finds a domain by GUID.
func (d *Directory) DomainByGUID(ctx context.Context, guid string) (*domain.Domain, error) {
	return d.domains.ByGUID(ctx, guid)
}

// DomainByID finds a domain by id.
func (d *Directory) DomainByID(ctx context.Context, id int64) (*domain.Domain, error) {
	return d.domains.ByID(ctx, id)
}

// DomainByName finds a domain by name.
func (d *Directory) DomainByName(ctx context.Context, name string) (*domain.Domain, error) {
	return d.domains.ByName(ctx, name)
}

// DomainNameByID returns the name of a domain.
func (d *Directory) DomainNameByID(ctx context.Context, id int64) (string, error) {
	dom, err := d.domains.ByID(ctx, id)
	if err != nil {
		return "", err
	}
	return dom.Name, nil
}

// SubscriptionDomains returns the domains sharing dom's webspace: domains
// of the same client with hosting and the same home path. When none
// qualify the result is dom alone.
func (d *Directory) SubscriptionDomains(ctx context.Context, dom *domain.Domain, primaryOnly bool) ([]*domain.Domain, error) {
	candidates, err := d.domains.ByClient(ctx, dom.ClientID, primaryOnly)
	if err != nil {
		return nil, err
	}

	var result []*domain.Domain
	if dom.HasHosting() {
		for _, c := range candidates {
			if dom.SameSubscription(c) {
				result = append(result, c)
			}
		}
	}
	if len(result) == 0 {
		return []*domain.Domain{dom}, nil
	}
	return result, nil
}

// PrimaryDomain returns the primary domain of the subscription that the
// domain with guid belongs to.
func (d *Directory) PrimaryDomain(ctx context.Context, guid string) (*domain.Domain, error) {
	dom, err := d.domains.ByGUID(ctx, guid)
	if errors.Is(err, domain.ErrDomainNotFound) {
		return nil, fmt.Errorf("no domain for GUID %s (anymore): %w", guid, err)
	}
	if err != nil {
		return nil, err
	}

	primary, err := d.SubscriptionDomains(ctx, dom, true)
	if err != nil {
		return nil, err
	}
	if len(primary) == 0 {
		return nil, fmt.Errorf("subscription for domain %s: %w", dom.Name, domain.ErrNoPrimaryDomain)
	}
	return primary[0], nil
}

// IsPrimaryDomain reports whether guid names a primary domain.
func (d *Directory) IsPrimaryDomain(ctx context.Context, guid string) bool {
	domains, err := d.AllDomains(ctx, nil, Filter{PrimaryOnly: true})
	if err != nil {
		d.logger.Error("failed to list primary domains", "error", err)
		return false
	}
	for _, dom := range domains {
		if dom.GUID == guid {
			return true
		}
	}
	return false
}

// IsPrimary reports whether dom is the primary domain of its subscription.
func (d *Directory) IsPrimary(ctx context.Context, dom *domain.Domain) bool {
	primary, err := d.PrimaryDomain(ctx, dom.GUID)
	if err != nil {
		d.logger.Debug("domain is not a primary", "domain", dom.Name, "error", err)
		return false
	}
	return primary.GUID == dom.GUID
}

// HasHosting reports whether dom has hosting, re-reading the domain when
// the copy at hand says it has none.
func (d *Directory) HasHosting(ctx context.Context, dom *domain.Domain) bool {
	if dom.HasHosting() {
		return true
	}
	fresh, err := d.domains.ByGUID(ctx, dom.GUID)
	if err != nil {
		return false
	}
	if fresh.HasHosting() {
		d.logger.Debug("hosting appeared after re-reading domain", "domain", dom.Name)
	}
	return fresh.HasHosting()
}

// HasMailService reports whether mail service is enabled for dom.
func (d *Directory) HasMailService(ctx context.Context, dom *domain.Domain) bool {
	prefs, err := d.api.MailPrefs(ctx, dom.ID)
	if err != nil {
		d.logger.Error("failed to read mail preferences", "domain", dom.Name, "error", err)
		return false
	}
	return prefs.MailService
}

// IsWildcard reports whether dom is a wildcard domain.
func (d *Directory) IsWildcard(dom *domain.Domain) bool {
	return dom.IsWildcard()
}

// HasPermission reports whether a permission is granted to a domain.
func (d *Directory) HasPermission(ctx context.Context, domainID int64, permission string) (bool, error) {
	return d.domains.HasPermission(ctx, domainID, permission)
}

// ListUsers returns the mailboxes of dom. With decrypt set, stored
// passwords are decrypted.
func (d *Directory) ListUsers(ctx context.Context, dom *domain.Domain, decrypt bool) ([]domain.MailUser, error) {
	users, err := d.mail.ListUsers(ctx, dom.ID)
	if err != nil {
		return nil, err
	}
	if !decrypt {
		return users, nil
	}
	if d.decrypter == nil {
		return nil, fmt.Errorf("list users of %s: no decryption key configured", dom.Name)
	}
	for i := range users {
		plain, err := crypto.OpenPassword(d.decrypter, users[i].Password)
		if err != nil {
			return nil, fmt.Errorf("decrypt password of %s: %w", users[i].Email, err)
		}
		users[i].Password = plain
	}
	return users, nil
}
