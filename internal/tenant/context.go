// Package tenant binds the current tenant (institution) partition to the
// request context. The binding is request-scoped: it is created by the tenant
// interceptor when a request arrives and is discarded with the context on
// every exit path, so a reused worker never observes a previous request's
// tenant.
package tenant

import (
	"context"
	"strings"
)

// DefaultSlug is the partition used when a request carries no tenant
// identifier. The persistence layer maps it to the shared/public schema.
const DefaultSlug = "public"

type contextKey struct{ name string }

var tenantKey = contextKey{"tenant_slug"}

// WithTenant returns a context with the tenant slug bound. The slug is
// trimmed; binding an empty slug returns ctx unchanged so FromContext falls
// back to DefaultSlug.
func WithTenant(ctx context.Context, slug string) context.Context {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ctx
	}
	return context.WithValue(ctx, tenantKey, slug)
}

// FromContext returns the tenant slug bound to ctx, or DefaultSlug if none
// is set.
func FromContext(ctx context.Context) string {
	if v, ok := ctx.Value(tenantKey).(string); ok && v != "" {
		return v
	}
	return DefaultSlug
}

// IsSet reports whether a tenant slug was explicitly bound to ctx.
func IsSet(ctx context.Context) bool {
	v, ok := ctx.Value(tenantKey).(string)
	return ok && v != ""
}
