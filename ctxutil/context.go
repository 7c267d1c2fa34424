// Package ctxutil carries request-scoped values across layers.
package ctxutil

import (
	"context"

	"github.com/google/uuid"

	"github.com/smartbuspass/backend/structs"
)

type contextKey string

const (
	// TraceIDKey is the field name trace IDs are logged under.
	TraceIDKey = "trace_id"

	traceIDKey   contextKey = "trace_id"
	principalKey contextKey = "principal"
)

// GetTraceID gets the trace ID from the context, or "" if absent.
func GetTraceID(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey).(string); ok {
		return id
	}
	return ""
}

// EnsureTraceID ensures a trace ID exists in the context, generating
// one when missing.
func EnsureTraceID(ctx context.Context) (context.Context, string) {
	if id := GetTraceID(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return context.WithValue(ctx, traceIDKey, id), id
}

// WithPrincipal stores the authenticated principal in the context.
func WithPrincipal(ctx context.Context, p *structs.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipal extracts the authenticated principal, if any.
func GetPrincipal(ctx context.Context) (*structs.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*structs.Principal)
	return p, ok
}
