package domain

// ClientType is the role of a panel account.
type ClientType string

const (
	ClientAdmin    ClientType = "admin"
	ClientReseller ClientType = "reseller"
	ClientCustomer ClientType = "client"
)

// Client is a panel account. Customers owned by a reseller carry the
// reseller id as ParentID.
type Client struct {
	ID       int64
	Login    string
	Type     ClientType
	ParentID int64
}

// IsAdmin reports whether the client is the administrator.
func (c *Client) IsAdmin() bool {
	return c.Type == ClientAdmin
}

// IsReseller reports whether the client is a reseller.
func (c *Client) IsReseller() bool {
	return c.Type == ClientReseller
}

// Session is the panel session a call is made in. A nil session or a
// session without client means a system context.
type Session struct {
	Client *Client
}

// IsSystem reports whether the session carries no client.
func (s *Session) IsSystem() bool {
	return s == nil || s.Client == nil
}
