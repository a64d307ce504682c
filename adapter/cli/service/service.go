// Package service holds the commands controlling systemd services of the
// extension.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kolabsys/phlesk/adapter/cli"
	systemApp "github.com/kolabsys/phlesk/internal/system/application"
	"github.com/kolabsys/phlesk/internal/system/domain"
)

var (
	unitName   string
	statusJSON bool
)

// Cmd is the parent command for service operations.
var Cmd = &cobra.Command{
	Use:   "service",
	Short: "Control systemd services",
	Long: `Control the systemd services shipped with the extension.

The unit defaults to "<id>.service"; use --unit for another name.

Examples:
  phlesk service status guam
  phlesk service restart wallace --unit wallace.service`,
}

var statusCmd = &cobra.Command{
	Use:   "status <id>",
	Short: "Show whether a service is configured, installed and running",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, svc, err := resolve(args[0])
		if err != nil {
			return err
		}

		status := services.Status(cmd.Context(), svc)
		if statusJSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
				"id":         svc.ID,
				"unit":       svc.Unit,
				"configured": status.Configured,
				"installed":  status.Installed,
				"running":    status.Running,
			})
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%s)\n", svc.Name, svc.Unit)
		fmt.Fprintf(out, "  configured: %t\n", status.Configured)
		fmt.Fprintf(out, "  installed:  %t\n", status.Installed)
		fmt.Fprintf(out, "  running:    %t\n", status.Running)
		return nil
	},
}

// action is a method expression on *systemApp.Services.
type action func(services *systemApp.Services, ctx context.Context, svc domain.Service) bool

func actionCmd(use, short string, run action) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, svc, err := resolve(args[0])
			if err != nil {
				return err
			}
			if !run(services, cmd.Context(), svc) {
				return fmt.Errorf("%s %s failed", use, svc.Unit)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s ok\n", svc.Unit, use)
			return nil
		},
	}
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
	Cmd.PersistentFlags().StringVar(&unitName, "unit", "", "systemd unit name")

	Cmd.AddCommand(statusCmd)
	Cmd.AddCommand(actionCmd("start", "Start a service", (*systemApp.Services).Start))
	Cmd.AddCommand(actionCmd("stop", "Stop a service", (*systemApp.Services).Stop))
	Cmd.AddCommand(actionCmd("restart", "Restart a service", (*systemApp.Services).Restart))
}

func resolve(id string) (*systemApp.Services, domain.Service, error) {
	app := cli.GetApp()
	if app == nil || app.Services == nil {
		return nil, domain.Service{}, errors.New("service control not configured")
	}
	svc, err := domain.NewService(id, "", unitName)
	if err != nil {
		return nil, domain.Service{}, err
	}
	return app.Services, svc, nil
}
