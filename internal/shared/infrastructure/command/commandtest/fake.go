// Package commandtest provides a scripted command.Runner for tests.
package commandtest

import (
	"context"
	"strings"
	"sync"

	"github.com/kolabsys/phlesk/internal/shared/infrastructure/command"
)

// Call records one invocation of the fake runner.
type Call struct {
	Program  string
	Args     []string
	Tolerant bool
}

// Line returns the call as a single space-joined command line.
func (c Call) Line() string {
	return command.CommandLine(c.Program, c.Args)
}

// FakeRunner answers commands from a table keyed by command line.
// Unknown commands exit with DefaultExitCode.
type FakeRunner struct {
	mu              sync.Mutex
	results         map[string]command.Result
	prefixes        map[string]command.Result
	calls           []Call
	DefaultExitCode int
}

// NewFakeRunner creates a fake runner whose unknown commands succeed.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		results:  make(map[string]command.Result),
		prefixes: make(map[string]command.Result),
	}
}

// On scripts the result for an exact command line.
func (f *FakeRunner) On(line string, result command.Result) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[line] = result
	return f
}

// OnExit scripts only the exit code for an exact command line.
func (f *FakeRunner) OnExit(line string, code int) *FakeRunner {
	return f.On(line, command.Result{ExitCode: code})
}

// OnPrefix scripts the result for every command line starting with prefix.
func (f *FakeRunner) OnPrefix(prefix string, result command.Result) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefixes[prefix] = result
	return f
}

// Run records the call and returns the scripted result.
func (f *FakeRunner) Run(ctx context.Context, program string, args []string, tolerant bool) command.Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := Call{Program: program, Args: append([]string{}, args...), Tolerant: tolerant}
	f.calls = append(f.calls, call)

	line := call.Line()
	if result, ok := f.results[line]; ok {
		return result
	}
	longest := ""
	for prefix := range f.prefixes {
		if strings.HasPrefix(line, prefix) && len(prefix) > len(longest) {
			longest = prefix
		}
	}
	if longest != "" {
		return f.prefixes[longest]
	}
	return command.Result{ExitCode: f.DefaultExitCode}
}

// Calls returns every recorded call in order.
func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call{}, f.calls...)
}

// Lines returns every recorded call as a command line.
func (f *FakeRunner) Lines() []string {
	calls := f.Calls()
	lines := make([]string, 0, len(calls))
	for _, c := range calls {
		lines = append(lines, c.Line())
	}
	return lines
}

// CallsWithPrefix returns the recorded calls whose command line starts with prefix.
func (f *FakeRunner) CallsWithPrefix(prefix string) []Call {
	var matched []Call
	for _, c := range f.Calls() {
		if strings.HasPrefix(c.Line(), prefix) {
			matched = append(matched, c)
		}
	}
	return matched
}
