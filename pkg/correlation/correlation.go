package correlation

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// correlationKey is an unexported type for context keys within this package.
type correlationKey struct{}

// Extract fetches a correlation ID from the context if present.
func Extract(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if val, ok := ctx.Value(correlationKey{}).(string); ok {
		return val
	}
	return ""
}

// Inject sets the correlation ID onto the context.
func Inject(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationKey{}, id)
}

// Ensure guarantees a correlation ID on the context, generating one when missing.
func Ensure(ctx context.Context) (context.Context, string) {
	cid := Extract(ctx)
	if cid == "" {
		cid = ulid.Make().String()
	}
	return Inject(ctx, cid), cid
}
