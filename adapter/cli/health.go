package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kolabsys/phlesk/pkg/observability"
)

var healthJSON bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the backends the extension depends on",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Health == nil {
			return errors.New("app not initialized")
		}

		results := app.Health.Check(cmd.Context())
		overall := observability.OverallStatus(results)

		if healthJSON {
			if err := json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
				"status": overall,
				"checks": results,
			}); err != nil {
				return err
			}
		} else {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, r := range results {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Name, r.Status, r.Duration, r.Message)
			}
			w.Flush()
			fmt.Fprintf(cmd.OutOrStdout(), "overall: %s\n", overall)
		}

		if overall == observability.HealthStatusUnhealthy {
			return errors.New("unhealthy")
		}
		return nil
	},
}

func init() {
	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(healthCmd)
}
