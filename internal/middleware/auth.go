// Package middleware provides HTTP middleware components for the application.
package middleware

import (
	"log"
	"strings"

	"montoit/internal/models"
	"montoit/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware validates bearer tokens issued by the auth provider.
type AuthMiddleware struct {
	secret []byte
}

// NewAuthMiddleware creates the middleware. An empty secret disables the check.
func NewAuthMiddleware(secret string) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(secret)}
}

// Enabled reports whether requests are authenticated.
func (m *AuthMiddleware) Enabled() bool {
	return len(m.secret) > 0
}

// Handler validates the HS256 bearer token and stores its claims under
// "claims". The token subject is the user id.
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	if !m.Enabled() {
		return c.Next()
	}

	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return response.Unauthorized(c, "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return response.Unauthorized(c, "invalid authorization format")
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	token, err := jwt.ParseWithClaims(tokenString, &models.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		log.Printf("Token validation error: %v", err)
		return response.Unauthorized(c, "invalid token")
	}

	claims, ok := token.Claims.(*models.UserClaims)
	if !ok || claims.UserID() == "" {
		return response.Unauthorized(c, "invalid claims")
	}

	c.Locals("claims", claims)

	return c.Next()
}
