package domain

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kolabsys/phlesk/adapter/cli"
)

var enableCmd = &cobra.Command{
	Use:   "enable <name>",
	Short: "Announce that the extension now serves a domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return integrate(cmd, args[0], true)
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable <name>",
	Short: "Announce that the extension stopped serving a domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return integrate(cmd, args[0], false)
	},
}

var defaultPermissionCmd = &cobra.Command{
	Use:   "default-permission",
	Short: "Show whether new subscriptions get the extension permission",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.DefaultPermission == nil {
			return errors.New("default permission not configured")
		}
		granted, err := app.DefaultPermission.Resolve(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), granted)
		return nil
	},
}

func init() {
	Cmd.AddCommand(enableCmd)
	Cmd.AddCommand(disableCmd)
	Cmd.AddCommand(defaultPermissionCmd)
}

func integrate(cmd *cobra.Command, name string, enable bool) error {
	app := cli.GetApp()
	if app == nil || app.Integration == nil || app.Directory == nil {
		return errors.New("integration not configured")
	}
	ctx := cmd.Context()

	d, err := app.Directory.DomainByName(ctx, name)
	if err != nil {
		return err
	}
	state := "enabled"
	if enable {
		err = app.Integration.EnableIntegration(ctx, d)
	} else {
		state = "disabled"
		err = app.Integration.DisableIntegration(ctx, d)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: integration %s\n", d.Name, state)
	return nil
}
