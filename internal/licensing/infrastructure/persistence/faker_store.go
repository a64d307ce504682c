package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/kolabsys/phlesk/internal/licensing/domain"
	"github.com/kolabsys/phlesk/internal/licensing/infrastructure/crypto"
)

// DefaultFakerValidity is the lifetime of a faked license.
const DefaultFakerValidity = 10 * 365 * 24 * time.Hour

// FakerStore issues a self-signed long-lived license instead of reading one.
// Development installations use it in place of a purchased key.
type FakerStore struct {
	moduleID string
	users    int
	validity time.Duration
	now      func() time.Time

	mu      sync.Mutex
	license *domain.License
}

var _ domain.Store = (*FakerStore)(nil)

// NewFakerStore creates a faker granting users seats (domain.Unlimited for
// no cap).
func NewFakerStore(moduleID string, users int) *FakerStore {
	return &FakerStore{
		moduleID: moduleID,
		users:    users,
		validity: DefaultFakerValidity,
		now:      time.Now,
	}
}

// SetValidity changes the lifetime of issued licenses.
func (s *FakerStore) SetValidity(validity time.Duration) {
	s.validity = validity
}

// SetClock replaces the time source.
func (s *FakerStore) SetClock(now func() time.Time) {
	s.now = now
}

// Load issues the license on first call and returns the same one afterwards.
func (s *FakerStore) Load(ctx context.Context) (*domain.License, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.license != nil {
		return s.license, nil
	}

	now := s.now()
	body, err := crypto.Issue(crypto.IssueRequest{
		Subject:   s.moduleID,
		Users:     s.users,
		NotBefore: now,
		NotAfter:  now.Add(s.validity),
	})
	if err != nil {
		return nil, err
	}

	s.license = &domain.License{KeyBody: body}
	return s.license, nil
}
