// Package requestctx carries per-request title state through context.
package requestctx

import (
	"context"

	"github.com/louisbranch/pagetitle/internal/title"
)

// sessionIDContextKey is the context key for the browser session identifier.
type sessionIDContextKey struct{}

// registryContextKey is the context key for the request's title registry.
type registryContextKey struct{}

// WithSessionID stores a session identifier in context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, sessionIDContextKey{}, sessionID)
}

// SessionIDFromContext returns the session identifier stored in context.
func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(sessionIDContextKey{}).(string)
	return value
}

// WithRegistry stores the title registry scoped to the current request.
func WithRegistry(ctx context.Context, registry *title.Registry) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, registryContextKey{}, registry)
}

// RegistryFromContext returns the request's title registry, or nil.
func RegistryFromContext(ctx context.Context) *title.Registry {
	if ctx == nil {
		return nil
	}
	registry, _ := ctx.Value(registryContextKey{}).(*title.Registry)
	return registry
}
