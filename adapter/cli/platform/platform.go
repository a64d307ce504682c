// Package platform holds the commands describing the host operating system.
package platform

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kolabsys/phlesk/adapter/cli"
	platformApp "github.com/kolabsys/phlesk/internal/platform/application"
)

var platformJSON bool

// Cmd prints the detected platform.
var Cmd = &cobra.Command{
	Use:   "platform",
	Short: "Show the detected platform and package manager",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := service()
		if err != nil {
			return err
		}

		info := svc.OSInfo()
		manager := packageManager(cmd, svc)
		if platformJSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
				"os":              info.Name,
				"version":         info.Version,
				"platform":        svc.Platform().String(),
				"distribution":    svc.Distribution(),
				"package_manager": manager,
			})
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "OS:              %s %s\n", info.Name, info.Version)
		fmt.Fprintf(out, "Platform:        %s\n", svc.Platform())
		fmt.Fprintf(out, "Distribution:    %s\n", svc.Distribution())
		fmt.Fprintf(out, "Package manager: %s\n", manager)
		return nil
	},
}

var importKeyCmd = &cobra.Command{
	Use:   "import-key <uri>",
	Short: "Import a package signing key from a URL or file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := service()
		if err != nil {
			return err
		}
		if err := svc.ImportPackageKey(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %s\n", args[0])
		return nil
	},
}

func init() {
	Cmd.Flags().BoolVar(&platformJSON, "json", false, "output as JSON")
	Cmd.AddCommand(importKeyCmd)
}

func service() (*platformApp.Service, error) {
	app := cli.GetApp()
	if app == nil || app.Platform == nil {
		return nil, errors.New("platform service not configured")
	}
	return app.Platform, nil
}

func packageManager(cmd *cobra.Command, svc *platformApp.Service) string {
	switch {
	case svc.UsesApt() && svc.UsesAptitude(cmd.Context()):
		return "aptitude"
	case svc.UsesApt():
		return "apt"
	case svc.UsesDnf():
		return "dnf"
	case svc.UsesYum():
		return "yum"
	default:
		return "none"
	}
}
