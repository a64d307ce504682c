// Package application evaluates the extension license.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/kolabsys/phlesk/internal/licensing/domain"
	"github.com/kolabsys/phlesk/internal/licensing/infrastructure/crypto"
	"golang.org/x/sync/singleflight"
)

// Evaluator answers license questions for one extension. The license is
// fetched from the store on first use and kept for the evaluator's
// lifetime; a failed fetch is not retried. Build one evaluator per process
// and share it.
type Evaluator struct {
	store     domain.Store
	counter   domain.UsageCounter
	activator domain.Activator
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.Mutex
	fetched bool
	license *domain.License
	cert    domain.Certificate
	limit   *int
	count   *int

	countGroup singleflight.Group
}

// NewEvaluator creates a new license evaluator. counter may be nil, in
// which case usage cannot be counted.
func NewEvaluator(store domain.Store, counter domain.UsageCounter, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{
		store:   store,
		counter: counter,
		logger:  logger,
		now:     time.Now,
	}
}

// SetClock replaces the time source.
func (e *Evaluator) SetClock(now func() time.Time) {
	e.now = now
}

// SetActivator registers the system activation step run after the license
// has been fetched.
func (e *Evaluator) SetActivator(activator domain.Activator) {
	e.activator = activator
}

// fetch loads and parses the license once. It reports whether a usable
// license is present.
func (e *Evaluator) fetch(ctx context.Context) bool {
	e.mu.Lock()
	if e.fetched {
		ok := e.license != nil
		e.mu.Unlock()
		return ok
	}
	e.fetched = true

	license, err := e.store.Load(ctx)
	switch {
	case err != nil:
		e.logger.Warn("failed to load license", "error", err)
		license = nil
	case license == nil:
		e.logger.Debug("can not validate license", "error", domain.ErrLicenseUnavailable)
	}

	if license != nil {
		cert, err := crypto.ParseCertificate(license.KeyBody)
		if err != nil {
			e.logger.Warn("failed to parse license", "error", err)
			license = nil
		} else {
			e.cert = cert
		}
	}
	e.license = license
	e.mu.Unlock()

	if license == nil {
		return false
	}
	if e.activator != nil && !e.activator.Activate(ctx, license) {
		e.logger.Warn("license system activation failed")
	}
	return true
}

// License returns the fetched license, or nil.
func (e *Evaluator) License(ctx context.Context) *domain.License {
	if !e.fetch(ctx) {
		return nil
	}
	return e.license
}

// Activate runs the system activation step for the license. It returns
// false when there is no license.
func (e *Evaluator) Activate(ctx context.Context) bool {
	if !e.fetch(ctx) {
		e.logger.Warn("license could not be activated", "error", domain.ErrLicenseUnavailable)
		return false
	}
	if e.activator == nil {
		return true
	}
	return e.activator.Activate(ctx, e.license)
}

// ExpireDate returns the license expiry date. The second value is false
// when there is no license.
func (e *Evaluator) ExpireDate(ctx context.Context) (time.Time, bool) {
	if !e.fetch(ctx) {
		e.logger.Warn("could not obtain license expiry date", "error", domain.ErrLicenseUnavailable)
		return time.Time{}, false
	}
	return e.cert.ExpiryDate(), true
}

// RenewDate returns the date renewal is due. The second value is false
// when there is no license.
func (e *Evaluator) RenewDate(ctx context.Context) (time.Time, bool) {
	if !e.fetch(ctx) {
		e.logger.Warn("could not obtain license renewal date", "error", domain.ErrLicenseUnavailable)
		return time.Time{}, false
	}
	return e.cert.RenewalDate(), true
}

// IsCurrent reports whether the license has not expired. Past the renewal
// date the license is still current.
func (e *Evaluator) IsCurrent(ctx context.Context) bool {
	if !e.fetch(ctx) {
		return false
	}

	now := e.now()
	if e.cert.IsExpired(now) {
		e.logger.Debug("license expired", "expiry", e.cert.ExpiryDate().Format(domain.DateLayout))
		return false
	}
	if e.cert.RenewalDue(now) {
		e.logger.Debug("license pending renewal", "renewal", e.cert.RenewalDate().Format(domain.DateLayout))
	}
	return true
}

// IsLicensed reports whether a current license is present.
func (e *Evaluator) IsLicensed(ctx context.Context) bool {
	return e.IsCurrent(ctx)
}

// IsValid reports whether a current license granting seats is present.
func (e *Evaluator) IsValid(ctx context.Context) bool {
	if !e.IsCurrent(ctx) {
		return false
	}
	return e.LicenseLimit(ctx) != 0
}

// Check returns nil for a valid license and the reason otherwise.
func (e *Evaluator) Check(ctx context.Context) error {
	if !e.fetch(ctx) {
		return domain.ErrLicenseUnavailable
	}
	if !e.IsCurrent(ctx) {
		return domain.ErrLicenseExpired
	}
	if e.LicenseLimit(ctx) == 0 {
		return domain.ErrLicenseInvalid
	}
	return nil
}

// LicenseLimit returns the number of licensed seats, domain.Unlimited for
// no cap, and 0 without a current license.
func (e *Evaluator) LicenseLimit(ctx context.Context) int {
	if !e.IsCurrent(ctx) {
		return 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.limit == nil {
		limit := domain.SeatLimit(e.cert, e.license.App)
		e.limit = &limit
	}
	return *e.limit
}

// LicenseCount returns the number of seats in use. Concurrent callers share
// one lookup and a successful result is kept.
func (e *Evaluator) LicenseCount(ctx context.Context) (int, error) {
	e.mu.Lock()
	if e.count != nil {
		count := *e.count
		e.mu.Unlock()
		return count, nil
	}
	e.mu.Unlock()

	if e.counter == nil {
		return 0, domain.ErrUsageUnavailable
	}

	v, err, _ := e.countGroup.Do("count", func() (any, error) {
		count, err := e.counter.LicenseCount(ctx)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", domain.ErrUsageUnavailable, err)
		}
		e.mu.Lock()
		e.count = &count
		e.mu.Unlock()
		return count, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

// LicenseWarningThreshold reports whether usage has come close enough to
// the seat limit to warn about it.
func (e *Evaluator) LicenseWarningThreshold(ctx context.Context) bool {
	limit := e.LicenseLimit(ctx)
	if limit < 0 {
		return false
	}

	count, err := e.LicenseCount(ctx)
	if err != nil {
		e.logger.Warn("failed to count license usage", "error", err)
		return false
	}
	return domain.ShouldWarn(limit, count)
}

// Summary is a snapshot of the license state for display.
type Summary struct {
	Licensed bool
	Valid    bool
	Limit    int
	Expiry   time.Time
	Renewal  time.Time
	Warning  bool
}

// LimitString renders the limit, "unlimited" for no cap.
func (s Summary) LimitString() string {
	if s.Limit == domain.Unlimited {
		return "unlimited"
	}
	return strconv.Itoa(s.Limit)
}

// Summarize collects the license state.
func (e *Evaluator) Summarize(ctx context.Context) Summary {
	summary := Summary{
		Licensed: e.IsLicensed(ctx),
		Valid:    e.IsValid(ctx),
		Limit:    e.LicenseLimit(ctx),
	}
	if expiry, ok := e.ExpireDate(ctx); ok {
		summary.Expiry = expiry
	}
	if renewal, ok := e.RenewDate(ctx); ok {
		summary.Renewal = renewal
	}
	if summary.Licensed {
		summary.Warning = e.LicenseWarningThreshold(ctx)
	}
	return summary
}
