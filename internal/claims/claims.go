// Package claims extracts identity from the JWT the auth middleware stores in
// Fiber context locals.
package claims

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// GetUserID extracts the user UUID from JWT claims in context.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	claimsMap, err := getClaims(c)
	if err != nil {
		return uuid.Nil, err
	}

	sub, ok := claimsMap["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}

	return uuid.Parse(sub)
}

// GetRole extracts the role claim; empty string when absent.
func GetRole(c *fiber.Ctx) string {
	claimsMap, err := getClaims(c)
	if err != nil {
		return ""
	}
	role, _ := claimsMap["role"].(string)
	return role
}

// GetEmail extracts the email claim; empty string when absent.
func GetEmail(c *fiber.Ctx) string {
	claimsMap, err := getClaims(c)
	if err != nil {
		return ""
	}
	email, _ := claimsMap["email"].(string)
	return email
}

// IsAdmin reports whether the token carries the admin role.
func IsAdmin(c *fiber.Ctx) bool {
	return GetRole(c) == "admin"
}

func getClaims(c *fiber.Ctx) (jwt.MapClaims, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, errors.New("invalid token in context")
	}

	claimsMap, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return claimsMap, nil
}
