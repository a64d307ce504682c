// Package domain models the extension license issued by the control panel.
package domain

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Unlimited is the seat limit of a license without a user cap.
const Unlimited = -1

// RenewalLead is how long before expiry renewal becomes due.
const RenewalLead = 14 * 24 * time.Hour

// DateLayout formats license dates for display ("March 4, 2025").
const DateLayout = "January 2, 2006"

// License is the additional license key stored for an extension.
type License struct {
	// KeyBody is the PEM encoded X.509 certificate.
	KeyBody string `json:"key-body"`
	// App describes the licensed product, e.g. "kolab 25".
	App string `json:"app,omitempty"`
}

// Certificate holds the fields of a license certificate the evaluator uses.
type Certificate struct {
	NotBefore time.Time
	NotAfter  time.Time
	// Comment is the vendor comment extension, if present.
	Comment    string
	HasComment bool
}

// ExpiryDate returns the end of the validity window.
func (c Certificate) ExpiryDate() time.Time {
	return c.NotAfter
}

// RenewalDate returns the later of one month after issue and RenewalLead
// before expiry.
func (c Certificate) RenewalDate() time.Time {
	oneMonthIn := c.NotBefore.AddDate(0, 1, 0)
	beforeExpiry := c.NotAfter.Add(-RenewalLead)
	if beforeExpiry.After(oneMonthIn) {
		return beforeExpiry
	}
	return oneMonthIn
}

// IsExpired reports whether now is past the expiry date.
func (c Certificate) IsExpired(now time.Time) bool {
	return now.After(c.ExpiryDate())
}

// RenewalDue reports whether now is past the renewal date.
func (c Certificate) RenewalDue(now time.Time) bool {
	return now.After(c.RenewalDate())
}

// SeatLimit returns the number of licensed seats. The vendor comment, a
// base64 encoded JSON object with a "users" field, takes precedence over
// the second word of the app descriptor.
func SeatLimit(cert Certificate, app string) int {
	if cert.HasComment {
		return commentSeats(cert.Comment)
	}
	return appSeats(app)
}

func commentSeats(comment string) int {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(comment))
	if err != nil {
		return 0
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return 0
	}

	switch users := payload["users"].(type) {
	case float64:
		return int(users)
	case string:
		return leadingInt(users)
	}
	return 0
}

func appSeats(app string) int {
	fields := strings.Split(app, " ")
	if len(fields) < 2 {
		return 0
	}
	return leadingInt(fields[1])
}

// leadingInt parses the optionally signed integer prefix of s, or 0.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// WarningThreshold returns the usage count at which a license limit warning
// is shown: 80% of limits up to 20, 90% up to 200, 95% above, rounded down.
func WarningThreshold(limit int) int {
	switch {
	case limit <= 20:
		return limit * 80 / 100
	case limit <= 200:
		return limit * 90 / 100
	default:
		return limit * 95 / 100
	}
}

// ShouldWarn reports whether count has reached the warning threshold for
// limit. Unlimited licenses never warn.
func ShouldWarn(limit, count int) bool {
	if limit < 0 {
		return false
	}
	return count >= WarningThreshold(limit)
}
