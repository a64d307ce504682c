package persistence

import (
	"context"
	"fmt"

	"github.com/kolabsys/phlesk/internal/hosting/domain"
	"github.com/kolabsys/phlesk/internal/shared/infrastructure/database"
)

// MailRepository implements domain.MailRepository.
type MailRepository struct {
	conn database.Connection
}

// NewMailRepository creates a mail repository.
func NewMailRepository(conn database.Connection) *MailRepository {
	return &MailRepository{conn: conn}
}

// ListUsers returns the mailboxes of a domain with their stored passwords.
func (r *MailRepository) ListUsers(ctx context.Context, domainID int64) ([]domain.MailUser, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, `
		SELECT m.mail_name, d.name, a.password
		FROM mail m
			INNER JOIN accounts a ON m.account_id = a.id
			INNER JOIN domains d ON m.dom_id = d.id
		WHERE d.id = ?
		ORDER BY m.id`, domainID)
	if err != nil {
		return nil, fmt.Errorf("list users of domain %d: %w", domainID, err)
	}
	defer rows.Close()

	var users []domain.MailUser
	for rows.Next() {
		var local, domainName, password string
		if err := rows.Scan(&local, &domainName, &password); err != nil {
			return nil, fmt.Errorf("scan mail user: %w", err)
		}
		users = append(users, domain.MailUser{
			Email:    local + "@" + domainName,
			Password: password,
		})
	}
	return users, rows.Err()
}

var _ domain.MailRepository = (*MailRepository)(nil)
