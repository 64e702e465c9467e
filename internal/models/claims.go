package models

import "github.com/golang-jwt/jwt/v5"

// UserClaims are the claims of an access token issued by the auth provider.
// The subject is the user id.
type UserClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UserID returns the token subject.
func (c *UserClaims) UserID() string {
	return c.Subject
}
