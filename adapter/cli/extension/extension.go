// Package extension holds the commands describing registered extensions.
package extension

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kolabsys/phlesk/adapter/cli"
)

var listJSON bool

// Cmd is the parent command for extension operations.
var Cmd = &cobra.Command{
	Use:   "extension",
	Short: "Inspect registered extensions",
}

type extensionView struct {
	ID          string   `json:"id"`
	Active      bool     `json:"active"`
	Installed   bool     `json:"installed"`
	Licensed    bool     `json:"licensed"`
	Permissions []string `json:"permissions"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered extensions",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		var views []extensionView
		for _, id := range app.Registry.IDs() {
			views = append(views, extensionView{
				ID:          id,
				Active:      app.Extensions.IsActive(id),
				Installed:   app.Extensions.IsInstalled(ctx, id),
				Licensed:    app.Extensions.IsLicensed(ctx, id),
				Permissions: app.Extensions.Permissions(id),
			})
		}

		if listJSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(views)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tACTIVE\tINSTALLED\tLICENSED")
		for _, v := range views {
			fmt.Fprintf(w, "%s\t%t\t%t\t%t\n", v.ID, v.Active, v.Installed, v.Licensed)
		}
		return w.Flush()
	},
}

var enabledCmd = &cobra.Command{
	Use:   "enabled <extension> <domain-id>",
	Short: "Report whether an extension is enabled for a domain",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil {
			return err
		}
		domainID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid domain id %q: %w", args[1], err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), app.Extensions.IsEnabled(cmd.Context(), args[0], domainID))
		return nil
	},
}

var installCmd = &cobra.Command{
	Use:   "install <extension>",
	Short: "Run the install hooks of an extension",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil {
			return err
		}
		if err := app.Extensions.Install(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s installed\n", args[0])
		return nil
	},
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <extension>",
	Short: "Run the pre-uninstall hook of an extension",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil {
			return err
		}
		if err := app.Extensions.PrepareUninstall(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s ready for removal\n", args[0])
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(enabledCmd)
	Cmd.AddCommand(installCmd)
	Cmd.AddCommand(uninstallCmd)
}

func getApp() (*cli.App, error) {
	app := cli.GetApp()
	if app == nil || app.Registry == nil || app.Extensions == nil {
		return nil, errors.New("extension registry not configured")
	}
	return app, nil
}
