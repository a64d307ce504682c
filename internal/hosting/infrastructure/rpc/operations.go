package rpc

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/kolabsys/phlesk/internal/hosting/domain"
)

// nonexistentUser is the mail handling for unknown recipients.
type nonexistentUser struct {
	Bounce  *string   `xml:"bounce"`
	Forward *string   `xml:"forward"`
	Reject  *struct{} `xml:"reject"`
}

// String renders the policy as "reject", "forward:<address>" or
// "bounce:<message>".
func (n nonexistentUser) String() string {
	switch {
	case n.Reject != nil:
		return "reject"
	case n.Forward != nil:
		return "forward:" + *n.Forward
	case n.Bounce != nil:
		return "bounce:" + *n.Bounce
	}
	return ""
}

type mailPrefsResponse struct {
	Result struct {
		result
		Prefs struct {
			MailService        string          `xml:"mailservice"`
			NonexistentUser    nonexistentUser `xml:"nonexistent-user"`
			SpamProtectSign    string          `xml:"spam-protect-sign"`
			Webmail            string          `xml:"webmail"`
			WebmailCertificate string          `xml:"webmail-certificate"`
		} `xml:"prefs"`
	} `xml:"mail>get_prefs>result"`
}

// MailPrefs returns the mail preferences of a site.
func (c *Client) MailPrefs(ctx context.Context, siteID int64) (domain.MailPrefs, error) {
	packet := fmt.Sprintf(`<packet><mail><get_prefs><filter><site-id>%d</site-id></filter></get_prefs></mail></packet>`, siteID)

	body, err := c.Call(ctx, []byte(packet))
	if err != nil {
		return domain.MailPrefs{}, err
	}

	var resp mailPrefsResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return domain.MailPrefs{}, fmt.Errorf("decode mail prefs: %w", err)
	}
	if err := resp.Result.err("mail get_prefs"); err != nil {
		return domain.MailPrefs{}, err
	}

	p := resp.Result.Prefs
	return domain.MailPrefs{
		MailService:        p.MailService == "true",
		NonexistentUser:    p.NonexistentUser.String(),
		SpamProtectSign:    p.SpamProtectSign == "true",
		Webmail:            p.Webmail,
		WebmailCertificate: p.WebmailCertificate,
	}, nil
}

type genInfoResponse struct {
	Result struct {
		result
		GenInfo []struct {
			Mode string `xml:"mode"`
		} `xml:"gen_info"`
	} `xml:"server>get>result"`
}

// IsPoweruserModeEnabled reports whether the panel runs in power user mode.
func (c *Client) IsPoweruserModeEnabled(ctx context.Context) (bool, error) {
	body, err := c.Call(ctx, []byte(`<packet><server><get><gen_info/></get></server></packet>`))
	if err != nil {
		return false, err
	}

	var resp genInfoResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return false, fmt.Errorf("decode server info: %w", err)
	}
	if err := resp.Result.err("server get"); err != nil {
		return false, err
	}

	for _, info := range resp.Result.GenInfo {
		if info.Mode == "poweruser" {
			return true, nil
		}
	}
	return false, nil
}

type webspaceStatResponse struct {
	Results []struct {
		result
		ID   int64 `xml:"id"`
		Stat struct {
			Box int `xml:"box"`
		} `xml:"data>stat"`
	} `xml:"webspace>get>result"`
}

// MailboxCount returns the number of mailboxes in a subscription.
func (c *Client) MailboxCount(ctx context.Context, domainID int64) (int, error) {
	packet := fmt.Sprintf(`<packet><webspace><get><filter><id>%d</id></filter><dataset><stat/></dataset></get></webspace></packet>`, domainID)

	body, err := c.Call(ctx, []byte(packet))
	if err != nil {
		return 0, err
	}

	var resp webspaceStatResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("decode webspace stat: %w", err)
	}

	total := 0
	for _, r := range resp.Results {
		if err := r.err("webspace get"); err != nil {
			return 0, err
		}
		total += r.Stat.Box
	}
	return total, nil
}

var _ domain.MailAPI = (*Client)(nil)
