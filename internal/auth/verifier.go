// Package auth provides JWT bearer authentication against an OIDC provider's JWKS.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// Config holds identity provider configuration.
type Config struct {
	Domain   string // issuer, e.g. "https://automate.eu.auth0.com"
	Audience string // API audience identifier, optional
}

// UserClaims represents the JWT claims used by the API.
type UserClaims struct {
	jwt.RegisteredClaims
	Email         string   `json:"email,omitempty"`
	EmailVerified bool     `json:"email_verified,omitempty"`
	Name          string   `json:"name,omitempty"`
	Permissions   []string `json:"permissions,omitempty"`
}

// Verifier handles JWT verification with JWKS.
type Verifier struct {
	keyfunc  jwt.Keyfunc
	audience string
	issuer   string
}

// NewVerifier creates a verifier that fetches signing keys from
// {Domain}/.well-known/jwks.json. Keys are refreshed in the background until
// ctx is cancelled.
func NewVerifier(ctx context.Context, cfg Config) (*Verifier, error) {
	if cfg.Domain == "" {
		return nil, errors.New("auth domain is required")
	}
	issuer := strings.TrimSuffix(cfg.Domain, "/")
	jwksURL := issuer + "/.well-known/jwks.json"

	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS keyfunc: %w", err)
	}

	return NewVerifierWithKeyfunc(cfg, jwks.Keyfunc), nil
}

// NewVerifierWithKeyfunc creates a verifier with a caller-supplied key lookup.
func NewVerifierWithKeyfunc(cfg Config, kf jwt.Keyfunc) *Verifier {
	return &Verifier{
		keyfunc:  kf,
		audience: cfg.Audience,
		issuer:   strings.TrimSuffix(cfg.Domain, "/"),
	}
}

// Verify validates a JWT token and returns the claims.
func (v *Verifier) Verify(tokenString string) (*UserClaims, error) {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	}
	if v.audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, v.keyfunc, parserOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}

	return claims, nil
}

// Middleware creates HTTP middleware that requires a valid bearer token.
func Middleware(verifier *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				http.Error(w, "Unauthorized: missing token", http.StatusUnauthorized)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				logrus.WithContext(r.Context()).WithError(err).Debug("rejected bearer token")
				http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// OptionalMiddleware verifies JWTs if present but doesn't require them.
func OptionalMiddleware(verifier *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" || verifier == nil {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				// Invalid token - continue without auth
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}

	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
