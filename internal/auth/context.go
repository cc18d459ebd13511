package auth

import (
	"context"
	"slices"
)

type contextKey int

const (
	claimsKey contextKey = iota
)

// WithClaims returns a new context carrying the given claims.
func WithClaims(ctx context.Context, claims *UserClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// Claims returns the verified claims from context, or nil if not authenticated.
func Claims(ctx context.Context) *UserClaims {
	claims, _ := ctx.Value(claimsKey).(*UserClaims)
	return claims
}

// UserID returns the token subject from context, or empty string if not authenticated.
func UserID(ctx context.Context) string {
	claims := Claims(ctx)
	if claims == nil {
		return ""
	}
	return claims.Subject
}

// Email returns the user's email from context, or empty string if not available.
func Email(ctx context.Context) string {
	claims := Claims(ctx)
	if claims == nil {
		return ""
	}
	return claims.Email
}

// IsAuthenticated returns true if the request has valid authentication.
func IsAuthenticated(ctx context.Context) bool {
	return Claims(ctx) != nil
}

// HasPermission checks if the user has a specific permission.
func HasPermission(ctx context.Context, permission string) bool {
	claims := Claims(ctx)
	if claims == nil {
		return false
	}
	return slices.Contains(claims.Permissions, permission)
}
