package observability

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	correlationIDCtxKey contextKey = "correlation_id"
	moduleCtxKey        contextKey = "module"
)

// Attribute keys used in logs and metrics.
const (
	CorrelationIDKey = "correlation_id"
	ModuleKey        = "module"
)

// WithCorrelationID adds a correlation ID to the context.
// If id is empty, a new UUID is generated.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.New().String()
	}
	return context.WithValue(ctx, correlationIDCtxKey, id)
}

// CorrelationIDFromContext extracts the correlation ID from context.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(correlationIDCtxKey).(string); ok {
		return id
	}
	return ""
}

// WithModule records the extension a call is made for.
func WithModule(ctx context.Context, module string) context.Context {
	return context.WithValue(ctx, moduleCtxKey, module)
}

// ModuleFromContext extracts the extension id from context.
func ModuleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if module, ok := ctx.Value(moduleCtxKey).(string); ok {
		return module
	}
	return ""
}

// NewCommandContext tags ctx with module and a correlation ID, keeping one
// that is already present.
func NewCommandContext(ctx context.Context, module string) context.Context {
	ctx = WithCorrelationID(ctx, CorrelationIDFromContext(ctx))
	if module != "" {
		ctx = WithModule(ctx, module)
	}
	return ctx
}
