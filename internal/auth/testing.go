package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// NewTestClaims creates UserClaims with the given subject and email.
// This is primarily for testing purposes.
func NewTestClaims(userID, email string) *UserClaims {
	return &UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: userID,
		},
		Email: email,
	}
}
