package middleware

import (
	"context"

	"github.com/google/uuid"
)

// Context key type to avoid collisions
type contextKey string

const (
	// PrincipalKey is the context key for the authenticated principal
	PrincipalKey contextKey = "principal"

	// AuthErrorKey is the context key for a deferred token failure
	AuthErrorKey contextKey = "auth_error"
)

// Principal is the authenticated caller attached to the request context
// after successful token verification
type Principal struct {
	ID          uuid.UUID
	DisplayName string
	Email       string
	Role        string
}

// HasRole reports whether the principal holds the given role
func (p *Principal) HasRole(role string) bool {
	return p.Role == role
}

// WithPrincipal adds the authenticated principal to the context
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// GetPrincipalFromContext retrieves the principal from context, or nil when
// the request is unauthenticated
func GetPrincipalFromContext(ctx context.Context) *Principal {
	if val := ctx.Value(PrincipalKey); val != nil {
		if p, ok := val.(*Principal); ok {
			return p
		}
	}
	return nil
}

// WithAuthError records why token verification failed. The request still
// proceeds; the failure only matters if a downstream handler demands a
// principal, at which point it determines the response code.
func WithAuthError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, AuthErrorKey, err)
}

// GetAuthErrorFromContext retrieves the deferred token failure, if any
func GetAuthErrorFromContext(ctx context.Context) error {
	if val := ctx.Value(AuthErrorKey); val != nil {
		if err, ok := val.(error); ok {
			return err
		}
	}
	return nil
}
