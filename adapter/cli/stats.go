package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the usage report of the extension as JSON",
	Long: `Print the usage report the panel collects from the extension: license
state, version, update settings and domain and mailbox counters.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Statistics == nil {
			return errors.New("statistics not configured")
		}

		stats, err := app.Statistics.Collect(cmd.Context())
		if err != nil {
			return fmt.Errorf("collect statistics: %w", err)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
