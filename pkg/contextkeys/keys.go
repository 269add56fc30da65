// Package contextkeys provides centralized context key definitions
//
// IMPORTANT: All context keys used across the application must be defined
// here. This prevents typos, documents dependencies, and makes key usage
// discoverable.
package contextkeys

import (
	"context"

	"github.com/lodgekeep/concierge/pkg/access"
)

// Key is the type for context keys to prevent collisions
type Key string

const (
	// PrincipalKey contains *access.Principal
	// Set by: guard middleware after an allow decision
	// Used by: downstream handlers that need the caller's identity
	// Type: *access.Principal
	PrincipalKey Key = "principal"

	// RequestIDKey contains request ID string (UUID)
	// Set by: authapi.Transport on outgoing requests, serve middleware on
	// incoming ones
	// Used by: logger fields, backend correlation
	// Type: string
	RequestIDKey Key = "request_id"
)

// WithPrincipal returns a context carrying the principal.
func WithPrincipal(ctx context.Context, p *access.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// PrincipalFrom extracts the principal from ctx, or nil.
func PrincipalFrom(ctx context.Context) *access.Principal {
	p, _ := ctx.Value(PrincipalKey).(*access.Principal)
	return p
}

// WithRequestID returns a context carrying the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// RequestIDFrom extracts the request ID from ctx, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
