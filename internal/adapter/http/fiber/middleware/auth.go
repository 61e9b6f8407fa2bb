// Package middleware holds the cross-cutting fiber handlers: auth, CORS,
// error mapping, and the API circuit breaker.
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/chargegrid/chargegrid/internal/domain"
	"github.com/chargegrid/chargegrid/internal/ports"
)

// AuthRequired validates the bearer token and stores the caller identity in
// request locals as user_id and user_role.
func AuthRequired(service ports.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header format")
		}

		user, err := service.ValidateToken(c.Context(), parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals("user_id", user.ID)
		c.Locals("user_role", string(user.Role))
		return c.Next()
	}
}

// AdminOnly allows only callers whose token carries the admin role. Must be
// chained after AuthRequired.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("user_role").(string)
		if role != string(domain.UserRoleAdmin) {
			return fiber.NewError(fiber.StatusForbidden, "admin role required")
		}
		return c.Next()
	}
}
