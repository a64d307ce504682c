// Package persistence reads hosting objects from the panel database.
package persistence

import (
	"context"
	"fmt"

	"github.com/kolabsys/phlesk/internal/hosting/domain"
	"github.com/kolabsys/phlesk/internal/shared/infrastructure/database"
)

const domainColumns = `id, guid, name, displayName, cl_id, webspace_id, htype, status, home_path`

// DomainRepository implements domain.DomainRepository.
type DomainRepository struct {
	conn database.Connection
}

// NewDomainRepository creates a domain repository.
func NewDomainRepository(conn database.Connection) *DomainRepository {
	return &DomainRepository{conn: conn}
}

func (r *DomainRepository) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

// All returns every domain ordered by id.
func (r *DomainRepository) All(ctx context.Context, primaryOnly bool) ([]*domain.Domain, error) {
	query := `SELECT ` + domainColumns + ` FROM domains`
	if primaryOnly {
		query += ` WHERE webspace_id = 0`
	}
	return r.list(ctx, query+` ORDER BY id`)
}

// ByClient returns the domains owned by a client.
func (r *DomainRepository) ByClient(ctx context.Context, clientID int64, primaryOnly bool) ([]*domain.Domain, error) {
	query := `SELECT ` + domainColumns + ` FROM domains WHERE cl_id = ?`
	if primaryOnly {
		query += ` AND webspace_id = 0`
	}
	return r.list(ctx, query+` ORDER BY id`, clientID)
}

// ByGUID finds a domain by GUID.
func (r *DomainRepository) ByGUID(ctx context.Context, guid string) (*domain.Domain, error) {
	return r.one(ctx, `SELECT `+domainColumns+` FROM domains WHERE guid = ?`, guid)
}

// ByID finds a domain by id.
func (r *DomainRepository) ByID(ctx context.Context, id int64) (*domain.Domain, error) {
	return r.one(ctx, `SELECT `+domainColumns+` FROM domains WHERE id = ?`, id)
}

// ByName finds a domain by its ASCII name.
func (r *DomainRepository) ByName(ctx context.Context, name string) (*domain.Domain, error) {
	return r.one(ctx, `SELECT `+domainColumns+` FROM domains WHERE name = ?`, name)
}

// HasPermission reports whether a permission is granted to a domain.
func (r *DomainRepository) HasPermission(ctx context.Context, domainID int64, permission string) (bool, error) {
	var value string
	err := r.exec(ctx).QueryRow(ctx,
		`SELECT value FROM domain_permissions WHERE dom_id = ? AND permission = ?`,
		domainID, permission,
	).Scan(&value)
	if database.IsNoRows(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read permission %s of domain %d: %w", permission, domainID, err)
	}
	return value == "true", nil
}

func (r *DomainRepository) one(ctx context.Context, query string, args ...any) (*domain.Domain, error) {
	d, err := scanDomain(r.exec(ctx).QueryRow(ctx, query, args...))
	if database.IsNoRows(err) {
		return nil, domain.ErrDomainNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read domain: %w", err)
	}
	return d, nil
}

func (r *DomainRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Domain, error) {
	rows, err := r.exec(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}
	defer rows.Close()

	var domains []*domain.Domain
	for rows.Next() {
		d, err := scanDomain(rows)
		if err != nil {
			return nil, fmt.Errorf("scan domain: %w", err)
		}
		domains = append(domains, d)
	}
	return domains, rows.Err()
}

func scanDomain(row database.Row) (*domain.Domain, error) {
	d := &domain.Domain{}
	err := row.Scan(
		&d.ID,
		&d.GUID,
		&d.Name,
		&d.DisplayName,
		&d.ClientID,
		&d.WebspaceID,
		&d.HostingType,
		&d.Status,
		&d.HomePath,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

var _ domain.DomainRepository = (*DomainRepository)(nil)
