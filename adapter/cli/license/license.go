// Package license holds the commands reporting the extension license.
package license

import (
	"github.com/spf13/cobra"

	"github.com/kolabsys/phlesk/internal/licensing/application"
)

var evaluator *application.Evaluator

// SetEvaluator sets the license evaluator for CLI commands.
func SetEvaluator(e *application.Evaluator) {
	evaluator = e
}

// Cmd is the parent command for license operations.
var Cmd = &cobra.Command{
	Use:   "license",
	Short: "Inspect the extension license",
	Long: `Inspect the license of the extension.

Use these commands to show the license state, check it from scripts or run
the activation step.`,
}

func init() {
	Cmd.AddCommand(statusCmd)
	Cmd.AddCommand(checkCmd)
	Cmd.AddCommand(activateCmd)
}
