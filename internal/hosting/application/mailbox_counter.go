package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kolabsys/phlesk/internal/hosting/domain"
)

// MailboxCounter counts licensed seats: the mailboxes of every active
// primary domain.
type MailboxCounter struct {
	domains DomainLister
	api     domain.MailAPI
	logger  *slog.Logger
}

// NewMailboxCounter creates a seat counter.
func NewMailboxCounter(domains DomainLister, api domain.MailAPI, logger *slog.Logger) *MailboxCounter {
	if logger == nil {
		logger = slog.Default()
	}
	return &MailboxCounter{domains: domains, api: api, logger: logger}
}

// LicenseCount sums the mailbox counts reported by the panel API.
func (c *MailboxCounter) LicenseCount(ctx context.Context) (int, error) {
	domains, err := c.domains.All(ctx, true)
	if err != nil {
		return 0, fmt.Errorf("list primary domains: %w", err)
	}

	total := 0
	for _, d := range domains {
		if !d.IsActive() {
			continue
		}
		n, err := c.api.MailboxCount(ctx, d.ID)
		if err != nil {
			return 0, fmt.Errorf("count mailboxes of %s: %w", d.Name, err)
		}
		total += n
	}

	c.logger.Debug("counted mailboxes", "domains", len(domains), "mailboxes", total)
	return total, nil
}
