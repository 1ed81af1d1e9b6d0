// Package middleware provides authentication and authorization middleware for the application.
package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"alphaboard/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// Identity is the caller resolved from a bearer token: a stable internal user
// id plus a human-readable display name. The engine itself never stores
// credentials; the token is minted by the dashboard's identity service.
type Identity struct {
	UserID      uint
	DisplayName string
}

// Locals keys under which the resolved identity is stored.
const (
	LocalsUserID      = "userID"
	LocalsDisplayName = "displayName"
)

// AuthRequired is a middleware that enforces authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	identity, err := resolveIdentity(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Locals(LocalsUserID, identity.UserID)
	c.Locals(LocalsDisplayName, identity.DisplayName)
	return c.Next()
}

// AuthOptional resolves the caller's identity when a bearer token is present
// but lets anonymous requests through. Read endpoints use it so listings can
// be annotated with the caller's own votes.
func AuthOptional(c *fiber.Ctx) error {
	if c.Get("Authorization") == "" {
		return c.Next()
	}
	identity, err := resolveIdentity(c)
	if err != nil {
		// A token was presented but is bad; reject rather than silently
		// downgrading to anonymous.
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	c.Locals(LocalsUserID, identity.UserID)
	c.Locals(LocalsDisplayName, identity.DisplayName)
	return c.Next()
}

func resolveIdentity(c *fiber.Ctx) (*Identity, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("authorization header required")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, fmt.Errorf("invalid authorization header format")
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	subClaim, ok := claims["sub"]
	if !ok {
		return nil, fmt.Errorf("invalid token structure - missing subject")
	}
	subStr, ok := subClaim.(string)
	if !ok {
		return nil, fmt.Errorf("invalid token subject type")
	}
	userIDVal, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in token")
	}

	identity := &Identity{UserID: uint(userIDVal)}

	// Display name snapshot; fall back to a derived handle when the identity
	// service did not set one.
	if name, ok := claims["name"].(string); ok && strings.TrimSpace(name) != "" {
		identity.DisplayName = strings.TrimSpace(name)
	} else {
		identity.DisplayName = fmt.Sprintf("analyst-%d", identity.UserID)
	}

	return identity, nil
}
