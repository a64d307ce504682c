// Package outbox holds the commands that inspect and replay the action-log
// spool.
package outbox

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kolabsys/phlesk/adapter/cli"
)

var statusJSON bool

// Cmd is the parent command for spool operations.
var Cmd = &cobra.Command{
	Use:   "outbox",
	Short: "Inspect and replay action-log events the broker refused",
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the number of spooled events",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil {
			return err
		}

		pending, dead, err := app.Outbox.Backlog(cmd.Context())
		if err != nil {
			return fmt.Errorf("read outbox: %w", err)
		}

		if statusJSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]int{
				"pending": pending,
				"dead":    dead,
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "pending: %d\ndead:    %d\n", pending, dead)
		return nil
	},
}

var flushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Replay due events once",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil {
			return err
		}

		total := 0
		for {
			n, err := app.Outbox.ProcessOnce(cmd.Context())
			if err != nil {
				return fmt.Errorf("replay outbox: %w", err)
			}
			if n == 0 {
				break
			}
			total += n
		}
		fmt.Fprintf(cmd.OutOrStdout(), "replayed %d event(s)\n", total)
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay events until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		app.Outbox.Start(ctx)
		<-ctx.Done()
		app.Outbox.Stop()

		stats := app.Outbox.GetStats()
		fmt.Fprintf(cmd.OutOrStdout(), "replayed %d event(s), %d failed, %d dead-lettered\n",
			stats.PublishedCount, stats.FailedCount, stats.DeadCount)
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
	Cmd.AddCommand(statusCmd)
	Cmd.AddCommand(flushCmd)
	Cmd.AddCommand(runCmd)
}

func getApp() (*cli.App, error) {
	app := cli.GetApp()
	if app == nil || app.Outbox == nil {
		return nil, errors.New("outbox not configured: set RABBITMQ_URL")
	}
	return app, nil
}
