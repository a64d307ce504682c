package command

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
)

// SbinRunner routes every command through the host's privileged execution
// helper, <sbinDir>/<module>-execute, which runs its arguments as a command.
type SbinRunner struct {
	inner  Runner
	helper string
	logger *slog.Logger
}

// NewSbinRunner creates a runner that prefixes commands with the module's
// execute helper.
func NewSbinRunner(inner Runner, sbinDir, moduleID string, logger *slog.Logger) *SbinRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &SbinRunner{
		inner:  inner,
		helper: filepath.Join(sbinDir, fmt.Sprintf("%s-execute", moduleID)),
		logger: logger,
	}
}

// Helper returns the path of the execute helper.
func (r *SbinRunner) Helper() string {
	return r.helper
}

// Run executes program through the helper. Failures are logged against the
// wrapped command line rather than the helper invocation.
func (r *SbinRunner) Run(ctx context.Context, program string, args []string, tolerant bool) Result {
	helperArgs := append([]string{program}, args...)
	result := r.inner.Run(ctx, r.helper, helperArgs, true)
	if !result.Success() && !tolerant {
		LogFailure(r.logger, program, args, result)
	}
	return result
}
