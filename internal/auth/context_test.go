package auth

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestClaims(t *testing.T) {
	t.Run("returns nil for empty context", func(t *testing.T) {
		assert.Nil(t, Claims(context.Background()))
	})

	t.Run("returns claims from context", func(t *testing.T) {
		claims := &UserClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "user_123"},
			Email:            "test@example.com",
		}
		got := Claims(WithClaims(context.Background(), claims))
		assert.NotNil(t, got)
		assert.Equal(t, "user_123", got.Subject)
		assert.Equal(t, "test@example.com", got.Email)
	})
}

func TestUserID(t *testing.T) {
	t.Run("returns empty string for empty context", func(t *testing.T) {
		assert.Equal(t, "", UserID(context.Background()))
	})

	t.Run("returns user ID from claims", func(t *testing.T) {
		ctx := WithClaims(context.Background(), NewTestClaims("auth0|abc123", ""))
		assert.Equal(t, "auth0|abc123", UserID(ctx))
	})
}

func TestEmail(t *testing.T) {
	t.Run("returns empty string for empty context", func(t *testing.T) {
		assert.Equal(t, "", Email(context.Background()))
	})

	t.Run("returns email from claims", func(t *testing.T) {
		ctx := WithClaims(context.Background(), &UserClaims{Email: "user@example.com"})
		assert.Equal(t, "user@example.com", Email(ctx))
	})
}

func TestIsAuthenticated(t *testing.T) {
	assert.False(t, IsAuthenticated(context.Background()))
	assert.True(t, IsAuthenticated(WithClaims(context.Background(), &UserClaims{})))
}

func TestHasPermission(t *testing.T) {
	t.Run("returns false for empty context", func(t *testing.T) {
		assert.False(t, HasPermission(context.Background(), "read:diagnoses"))
	})

	ctx := WithClaims(context.Background(), &UserClaims{
		Permissions: []string{"read:diagnoses", "write:diagnoses"},
	})

	t.Run("returns false for missing permission", func(t *testing.T) {
		assert.False(t, HasPermission(ctx, "delete:diagnoses"))
	})

	t.Run("returns true for existing permission", func(t *testing.T) {
		assert.True(t, HasPermission(ctx, "read:diagnoses"))
	})
}
