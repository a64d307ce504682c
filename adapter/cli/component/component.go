// Package component holds the commands managing panel components and
// release files of the extension.
package component

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kolabsys/phlesk/adapter/cli"
)

var listJSON bool

// Cmd is the parent command for component operations.
var Cmd = &cobra.Command{
	Use:   "component",
	Short: "Manage panel components and release files",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed panel components",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil {
			return err
		}

		installed := app.Components.Installed(cmd.Context())
		if listJSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(installed)
		}

		names := make([]string, 0, len(installed))
		for name := range installed {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, installed[name])
		}
		return nil
	},
}

var installCmd = &cobra.Command{
	Use:   "install <component>...",
	Short: "Install panel components",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil {
			return err
		}
		if !app.Components.Install(cmd.Context(), args) {
			return fmt.Errorf("installing %s failed", strings.Join(args, ", "))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "installed %s\n", strings.Join(args, ", "))
		return nil
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download <filename>",
	Short: "Download a release file into the extension var directory",
	Long: `Download a release file into the extension var directory.

Waits while an installation of the extension is in progress.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Downloader == nil {
			return errors.New("downloader not configured")
		}
		ok, err := app.Downloader.DownloadRelease(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("download of %s failed", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "downloaded %s\n", args[0])
		return nil
	},
}

var renderCmd = &cobra.Command{
	Use:   "render <template> [key=value]...",
	Short: "Render a template from the extension var directory",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Templates == nil {
			return errors.New("templates not configured")
		}

		substitutions := make(map[string]string, len(args)-1)
		for _, arg := range args[1:] {
			key, value, ok := strings.Cut(arg, "=")
			if !ok || key == "" {
				return fmt.Errorf("invalid substitution %q, expected key=value", arg)
			}
			substitutions[key] = value
		}
		fmt.Fprint(cmd.OutOrStdout(), app.Templates.Render(args[0], substitutions))
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")

	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(installCmd)
	Cmd.AddCommand(downloadCmd)
	Cmd.AddCommand(renderCmd)
}

func getApp() (*cli.App, error) {
	app := cli.GetApp()
	if app == nil || app.Components == nil {
		return nil, errors.New("component manager not configured")
	}
	return app, nil
}
