// Package application answers questions about cooperating extensions on
// behalf of the current one.
package application

import (
	"log/slog"
	"sync"

	"github.com/kolabsys/phlesk/internal/extension/domain"
)

// Context tracks the extension the process currently acts as.
type Context struct {
	mu     sync.Mutex
	module string
	logger *slog.Logger
}

// NewContext creates a context acting as module.
func NewContext(module string, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{module: domain.NormalizeID(module), logger: logger}
}

// ModuleID returns the current extension id.
func (c *Context) ModuleID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.module
}

// In switches to target and returns the extension to switch back to.
// Switching to the current extension is a no-op.
//
//	previous := ctx.In("seafile")
//	defer ctx.Out(previous)
func (c *Context) In(target string) string {
	target = domain.NormalizeID(target)

	c.mu.Lock()
	defer c.mu.Unlock()

	previous := c.module
	if previous != target {
		c.logger.Debug("switching extension context", "from", previous, "to", target)
		c.module = target
	}
	return previous
}

// Out switches back to previous, as returned by In.
func (c *Context) Out(previous string) {
	c.In(previous)
}

// Logger returns a logger tagged with the current extension.
func (c *Context) Logger() *slog.Logger {
	return c.logger.With("module", c.ModuleID())
}
