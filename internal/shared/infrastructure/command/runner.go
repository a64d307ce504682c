// Package command runs external programs and reports their outcome as values.
//
// A failed command is never an error: callers inspect Result.ExitCode. Runs
// that are not tolerant of failure log the command line and its stderr.
package command

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/kolabsys/phlesk/pkg/observability"
)

// ExitCodeNotStarted is reported when the program could not be started at all.
const ExitCodeNotStarted = 127

// Result is the outcome of a single process execution.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports whether the process exited with status 0.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Runner executes external commands synchronously.
type Runner interface {
	// Run executes program with args and blocks until it exits.
	// When tolerant is false a non-zero exit is logged as an error.
	Run(ctx context.Context, program string, args []string, tolerant bool) Result
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	logger  *slog.Logger
	metrics observability.Metrics
	env     []string
}

// NewExecRunner creates a runner that spawns processes directly.
func NewExecRunner(logger *slog.Logger) *ExecRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecRunner{logger: logger, metrics: observability.NoopMetrics{}}
}

// SetMetrics sets the collector that receives per-program run counts and
// durations.
func (r *ExecRunner) SetMetrics(metrics observability.Metrics) {
	r.metrics = metrics
}

// WithEnv returns a copy of the runner that appends env to the child environment.
func (r *ExecRunner) WithEnv(env ...string) *ExecRunner {
	return &ExecRunner{
		logger:  r.logger,
		metrics: r.metrics,
		env:     append(append([]string{}, r.env...), env...),
	}
}

// Run executes the program and captures its exit code and output.
func (r *ExecRunner) Run(ctx context.Context, program string, args []string, tolerant bool) Result {
	cmd := exec.CommandContext(ctx, program, args...)
	if len(r.env) > 0 {
		cmd.Env = append(cmd.Environ(), r.env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	timer := observability.StartTimer(observability.MetricCommandTotal, observability.MetricCommandDuration, observability.MetricCommandFailures).
		WithMetrics(r.metrics).
		WithTags(observability.T("program", program))
	err := cmd.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = ExitCodeNotStarted
			if result.Stderr == "" {
				result.Stderr = err.Error()
			}
		}
	}

	timer.Stop(ctx, !result.Success())

	if !result.Success() && !tolerant {
		LogFailure(r.logger, program, args, result)
	}

	r.logger.DebugContext(ctx, "command executed",
		"command", CommandLine(program, args),
		"exit_code", result.ExitCode,
	)

	return result
}

// LogFailure emits the two diagnostic lines for a failed, non-tolerant run.
func LogFailure(logger *slog.Logger, program string, args []string, result Result) {
	logger.Error("error executing command",
		"command", CommandLine(program, args),
		"exit_code", result.ExitCode,
	)
	logger.Error("command stderr", "stderr", strings.TrimSpace(result.Stderr))
}

// CommandLine joins program and args for display.
func CommandLine(program string, args []string) string {
	return strings.Join(append([]string{program}, args...), " ")
}
