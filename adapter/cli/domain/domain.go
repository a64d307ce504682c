// Package domain holds the commands listing the hosted domains the
// extension serves.
package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kolabsys/phlesk/adapter/cli"
	hostingApp "github.com/kolabsys/phlesk/internal/hosting/application"
	hostingDomain "github.com/kolabsys/phlesk/internal/hosting/domain"
)

var (
	listPrimary bool
	listHosting bool
	listMail    bool
	listFilters []string
	listJSON    bool
	decrypt     bool
)

// Cmd is the parent command for domain operations.
var Cmd = &cobra.Command{
	Use:   "domain",
	Short: "Inspect hosted domains",
}

type domainView struct {
	ID          int64  `json:"id"`
	GUID        string `json:"guid"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	ClientID    int64  `json:"clientId"`
	Primary     bool   `json:"primary"`
	Hosting     bool   `json:"hosting"`
	Wildcard    bool   `json:"wildcard"`
	IDN         bool   `json:"idn"`
	Active      bool   `json:"active"`
}

func view(d *hostingDomain.Domain) domainView {
	return domainView{
		ID:          d.ID,
		GUID:        d.GUID,
		Name:        d.Name,
		DisplayName: d.DisplayName,
		ClientID:    d.ClientID,
		Primary:     d.IsPrimary(),
		Hosting:     d.HasHosting(),
		Wildcard:    d.IsWildcard(),
		IDN:         d.IsIDN(),
		Active:      d.IsActive(),
	}
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List domains",
	Long: `List the domains of the panel.

Examples:
  phlesk domain list --primary
  phlesk domain list --mail --filter active --filter notWildcard`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := directory()
		if err != nil {
			return err
		}

		domains, err := dir.AllDomains(cmd.Context(), nil, hostingApp.Filter{
			PrimaryOnly: listPrimary,
			Hosting:     listHosting,
			Mail:        listMail,
			Filters:     listFilters,
		})
		if err != nil {
			return err
		}

		if listJSON {
			views := make([]domainView, 0, len(domains))
			for _, d := range domains {
				views = append(views, view(d))
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(views)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCLIENT\tPRIMARY\tHOSTING")
		for _, d := range domains {
			fmt.Fprintf(w, "%d\t%s\t%d\t%t\t%t\n", d.ID, d.DisplayName, d.ClientID, d.IsPrimary(), d.HasHosting())
		}
		return w.Flush()
	},
}

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one domain and its subscription",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := directory()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		d, err := dir.DomainByName(ctx, args[0])
		if err != nil {
			return err
		}
		primary, err := dir.PrimaryDomain(ctx, d.GUID)
		if err != nil {
			return err
		}
		subscription, err := dir.SubscriptionDomains(ctx, d, false)
		if err != nil {
			return err
		}

		names := make([]string, 0, len(subscription))
		for _, s := range subscription {
			names = append(names, s.Name)
		}
		return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
			"domain":       view(d),
			"primary":      primary.Name,
			"mailService":  dir.HasMailService(ctx, d),
			"subscription": names,
		})
	},
}

var usersCmd = &cobra.Command{
	Use:   "users <name>",
	Short: "List the mail users of a domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := directory()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		d, err := dir.DomainByName(ctx, args[0])
		if err != nil {
			return err
		}
		users, err := dir.ListUsers(ctx, d, decrypt)
		if err != nil {
			return err
		}
		for _, u := range users {
			if decrypt {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", u.Email, u.Password)
				continue
			}
			fmt.Fprintln(cmd.OutOrStdout(), u.Email)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listPrimary, "primary", false, "only primary domains")
	listCmd.Flags().BoolVar(&listHosting, "hosting", false, "only domains with virtual hosting")
	listCmd.Flags().BoolVar(&listMail, "mail", false, "only domains with mail service")
	listCmd.Flags().StringSliceVar(&listFilters, "filter", nil, "named filters the domains must pass")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	usersCmd.Flags().BoolVar(&decrypt, "decrypt", false, "include decrypted passwords")

	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(usersCmd)
}

func directory() (*hostingApp.Directory, error) {
	app := cli.GetApp()
	if app == nil || app.Directory == nil {
		return nil, errors.New("domain directory not configured")
	}
	return app.Directory, nil
}
