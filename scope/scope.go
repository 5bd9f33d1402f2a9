// Package scope captures and restores tenant and correlation identifiers
// from context, so the adapter and its observability layer agree on which
// hub request a log line or span belongs to.
package scope

import (
	"context"

	"github.com/google/uuid"
)

type contextKey int

const (
	tenantKey contextKey = iota
	correlationKey
)

// Capture extracts the tenant and correlation IDs from the context.
// Returns empty strings when none were restored.
func Capture(ctx context.Context) (tenantID, correlationID string) {
	if v, ok := ctx.Value(tenantKey).(string); ok {
		tenantID = v
	}
	if v, ok := ctx.Value(correlationKey).(string); ok {
		correlationID = v
	}
	return tenantID, correlationID
}

// Restore injects tenant and correlation IDs into the context. Empty values
// leave the existing context values untouched.
func Restore(ctx context.Context, tenantID, correlationID string) context.Context {
	if tenantID != "" {
		ctx = context.WithValue(ctx, tenantKey, tenantID)
	}
	if correlationID != "" {
		ctx = context.WithValue(ctx, correlationKey, correlationID)
	}
	return ctx
}

// EnsureCorrelation returns the context's correlation ID, minting one when
// the hub supplied none, together with the (possibly updated) context.
func EnsureCorrelation(ctx context.Context) (context.Context, string) {
	if v, ok := ctx.Value(correlationKey).(string); ok && v != "" {
		return ctx, v
	}

	correlationID := uuid.NewString()
	return context.WithValue(ctx, correlationKey, correlationID), correlationID
}
