// Package pkg holds the commands installing distribution packages.
package pkg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kolabsys/phlesk/adapter/cli"
)

var dryRun bool

// Cmd is the parent command for package operations.
var Cmd = &cobra.Command{
	Use:   "pkg",
	Short: "Install distribution packages",
}

var installCmd = &cobra.Command{
	Use:   "install <package>...",
	Short: "Install the packages that are missing",
	Long: `Install the given packages with the package manager of the platform.

Packages that are installed already or not available are skipped; the rest
are installed in a single run of the package manager.

Examples:
  phlesk pkg install kolab guam
  phlesk pkg install --dry-run kolab`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Packages == nil {
			return errors.New("package installer not configured")
		}
		out := cmd.OutOrStdout()

		if dryRun {
			plan, err := app.Packages.Plan(cmd.Context(), args)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "platform:          %s\n", plan.Platform)
			fmt.Fprintf(out, "install:           %s\n", list(plan.Install))
			fmt.Fprintf(out, "already installed: %s\n", list(plan.AlreadyInstalled))
			fmt.Fprintf(out, "unavailable:       %s\n", list(plan.Unavailable))
			if len(plan.Install) > 0 {
				fmt.Fprintf(out, "command:           %s %s\n", strings.Join(plan.Command, " "), strings.Join(plan.Install, " "))
			}
			return nil
		}

		ok, err := app.Packages.Install(cmd.Context(), args)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("package installation failed")
		}
		fmt.Fprintln(out, "packages installed")
		return nil
	},
}

func init() {
	installCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be installed")
	Cmd.AddCommand(installCmd)
}

func list(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
