// Package settings holds the commands reading and writing the settings of
// the extension.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kolabsys/phlesk/adapter/cli"
	settingsApp "github.com/kolabsys/phlesk/internal/settings/application"
)

var settingsJSON bool

// Cmd is the parent command for settings operations.
var Cmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage extension settings",
}

var getCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Get a setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := service()
		if err != nil {
			return err
		}

		value, ok := settings.Get(cmd.Context(), args[0])
		if settingsJSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
				"module": settings.Module(),
				"name":   args[0],
				"value":  value,
				"set":    ok,
			})
		}
		if !ok {
			return fmt.Errorf("setting %s is not set", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:   "set <name> <value>",
	Short: "Set a setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := service()
		if err != nil {
			return err
		}
		if err := settings.Set(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		if settingsJSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
				"module": settings.Module(),
				"name":   args[0],
				"value":  args[1],
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s set\n", args[0])
		return nil
	},
}

func init() {
	Cmd.PersistentFlags().BoolVar(&settingsJSON, "json", false, "output as JSON")
	Cmd.AddCommand(getCmd)
	Cmd.AddCommand(setCmd)
}

func service() (*settingsApp.Settings, error) {
	app := cli.GetApp()
	if app == nil || app.Settings == nil {
		return nil, errors.New("settings service not configured")
	}
	return app.Settings, nil
}
