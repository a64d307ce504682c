package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/kolabsys/phlesk/pkg/observability"
)

var (
	cfgFile string
	verbose bool
	logger  *slog.Logger
)

type commandContext struct {
	correlationID string
	startedAt     time.Time
}

type commandContextKey struct{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "phlesk",
	Short: "phlesk - panel extension toolkit",
	Long: `phlesk runs the host side of a panel extension: it detects the
platform, installs packages and components, controls services, evaluates
the extension license and reports on the domains it serves.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		module := ""
		if app := GetApp(); app != nil {
			module = app.Module
		}
		ctx = observability.NewCommandContext(ctx, module)
		info := commandContext{
			correlationID: observability.CorrelationIDFromContext(ctx),
			startedAt:     time.Now(),
		}
		cmd.SetContext(context.WithValue(ctx, commandContextKey{}, info))
		logger.DebugContext(ctx, "command start", "command", cmd.CommandPath())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		ctx := cmd.Context()
		info, ok := ctx.Value(commandContextKey{}).(commandContext)
		if !ok {
			return
		}
		logger.DebugContext(ctx, "command end",
			"command", cmd.CommandPath(),
			"duration_ms", time.Since(info.startedAt).Milliseconds(),
		)
		if app := GetApp(); verbose && app != nil && app.Metrics != nil {
			logger.InfoContext(ctx, "command metrics", "counters", app.Metrics.Counters())
		}
	},
}

// ExecuteContext runs the root command with ctx. Errors are returned, not
// printed.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "dotenv file with PHLESK_* settings")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// AddCommand adds a command to the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

// ConfigFile returns the value of the --config flag. Flags must have been
// parsed, see ParseGlobalFlags.
func ConfigFile() string {
	return cfgFile
}

// Verbose reports whether --verbose was given.
func Verbose() bool {
	return verbose
}

// ParseGlobalFlags reads the persistent flags from args before the
// application is built. Unknown flags are left to the subcommands.
func ParseGlobalFlags(args []string) {
	flags := rootCmd.PersistentFlags()
	flags.ParseErrorsWhitelist.UnknownFlags = true
	_ = flags.Parse(args)
}
