package license

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kolabsys/phlesk/internal/licensing/application"
)

var statusJSON bool

// statusCmd shows the current license state.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current license status",
	Long: `Display the current license status including:
- Whether the extension is licensed
- Seat limit and seats in use
- Expiry and renewal dates`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	if evaluator == nil {
		return fmt.Errorf("license evaluator not available")
	}

	ctx := cmd.Context()
	summary := evaluator.Summarize(ctx)
	used, usedErr := evaluator.LicenseCount(ctx)

	if statusJSON {
		payload := map[string]any{
			"licensed": summary.Licensed,
			"valid":    summary.Valid,
			"limit":    summary.Limit,
			"warning":  summary.Warning,
			"expiry":   formatDate(summary.Expiry, time.RFC3339),
			"renewal":  formatDate(summary.Renewal, time.RFC3339),
		}
		if usedErr == nil {
			payload["used"] = used
		}
		return json.NewEncoder(cmd.OutOrStdout()).Encode(payload)
	}

	displayStatus(cmd, summary, used, usedErr)
	return nil
}

func displayStatus(cmd *cobra.Command, summary application.Summary, used int, usedErr error) {
	out := cmd.OutOrStdout()

	switch {
	case summary.Valid:
		fmt.Fprintln(out, "License Status: Valid")
	case summary.Licensed:
		fmt.Fprintln(out, "License Status: Licensed, no seats")
	default:
		fmt.Fprintln(out, "License Status: Not licensed")
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Seats:   %s\n", summary.LimitString())
	if usedErr != nil {
		fmt.Fprintf(out, "In use:  unknown (%v)\n", usedErr)
	} else {
		fmt.Fprintf(out, "In use:  %d\n", used)
	}
	fmt.Fprintf(out, "Expires: %s\n", formatDate(summary.Expiry, "January 2, 2006"))
	fmt.Fprintf(out, "Renew:   %s\n", formatDate(summary.Renewal, "January 2, 2006"))

	if summary.Warning {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "*** SEAT USAGE NEAR THE LICENSE LIMIT ***")
	}
}

func formatDate(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(layout)
}
