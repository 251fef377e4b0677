package auth

import (
	"context"

	"github.com/mailcast/mailcast/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const tenantKeyContextKey contextKey = "tenant_key"

// ContextWithTenantKey stores the authorized API key in the context.
func ContextWithTenantKey(ctx context.Context, key model.APIKey) context.Context {
	return context.WithValue(ctx, tenantKeyContextKey, key)
}

// TenantKeyFromContext returns the authorized API key, if any.
func TenantKeyFromContext(ctx context.Context) (model.APIKey, bool) {
	key, ok := ctx.Value(tenantKeyContextKey).(model.APIKey)
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

// MustTenantKeyFromContext returns the authorized API key.
// Panics if not present (use only behind the auth middleware).
func MustTenantKeyFromContext(ctx context.Context) model.APIKey {
	key, ok := TenantKeyFromContext(ctx)
	if !ok {
		panic("tenant key not found - ensure auth middleware is applied")
	}
	return key
}
