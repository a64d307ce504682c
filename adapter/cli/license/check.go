package license

import (
	"fmt"

	"github.com/spf13/cobra"
)

// checkCmd exits non-zero unless the license is valid.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Exit non-zero unless the license is valid",
	RunE: func(cmd *cobra.Command, args []string) error {
		if evaluator == nil {
			return fmt.Errorf("license evaluator not available")
		}
		if err := evaluator.Check(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "license valid")
		return nil
	},
}

// activateCmd runs the system activation step for the stored license.
var activateCmd = &cobra.Command{
	Use:   "activate",
	Short: "Run the activation step for the stored license",
	RunE: func(cmd *cobra.Command, args []string) error {
		if evaluator == nil {
			return fmt.Errorf("license evaluator not available")
		}
		if !evaluator.Activate(cmd.Context()) {
			return fmt.Errorf("license activation failed")
		}
		fmt.Fprintln(cmd.OutOrStdout(), "license activated")
		return nil
	},
}
