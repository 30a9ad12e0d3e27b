package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"hikvision-integration/models"
)

// TokenValidator checks a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(token string) (*models.Claims, error)
}

const ClaimsKey = "user"

func AuthMiddleware(tokens TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authorization header is required"})
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authorization header format must be Bearer <token>"})
		}

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token", "details": err.Error()})
		}

		c.Locals(ClaimsKey, claims)

		return c.Next()
	}
}

// ClaimsFrom returns the claims stored by AuthMiddleware, or nil.
func ClaimsFrom(c *fiber.Ctx) *models.Claims {
	claims, _ := c.Locals(ClaimsKey).(*models.Claims)
	return claims
}
