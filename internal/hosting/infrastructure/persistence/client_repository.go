package persistence

import (
	"context"
	"fmt"

	"github.com/kolabsys/phlesk/internal/hosting/domain"
	"github.com/kolabsys/phlesk/internal/shared/infrastructure/database"
)

// ClientRepository implements domain.ClientRepository.
type ClientRepository struct {
	conn database.Connection
}

// NewClientRepository creates a client repository.
func NewClientRepository(conn database.Connection) *ClientRepository {
	return &ClientRepository{conn: conn}
}

// ByID finds a client.
func (r *ClientRepository) ByID(ctx context.Context, id int64) (*domain.Client, error) {
	c := &domain.Client{}
	var clientType string
	err := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT id, login, type, parent_id FROM clients WHERE id = ?`, id,
	).Scan(&c.ID, &c.Login, &clientType, &c.ParentID)
	if database.IsNoRows(err) {
		return nil, domain.ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read client %d: %w", id, err)
	}
	c.Type = domain.ClientType(clientType)
	return c, nil
}

// CanAccessDomain implements domain.ClientRepository.
func (r *ClientRepository) CanAccessDomain(ctx context.Context, resellerID, domainID int64) (bool, error) {
	var count int
	err := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx, `
		SELECT COUNT(*) FROM domains d
		JOIN clients c ON c.id = d.cl_id
		WHERE d.id = ? AND (c.id = ? OR c.parent_id = ?)`,
		domainID, resellerID, resellerID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check access of client %d to domain %d: %w", resellerID, domainID, err)
	}
	return count > 0, nil
}

var _ domain.ClientRepository = (*ClientRepository)(nil)
