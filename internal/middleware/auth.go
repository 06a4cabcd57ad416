package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"permit-review/internal/domain"
	"permit-review/internal/service/auth"
)

const (
	PrincipalContextKey = "principal"

	IdempotencyKeyHeader = "Idempotency-Key"
	CallbackKeyHeader    = "X-Callback-Key"
)

func AuthRequired(authService auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return Unauthorized("Missing authorization header")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return Unauthorized("Invalid authorization header format")
		}

		principal, err := authService.ValidateAccessToken(parts[1])
		if err != nil {
			return Unauthorized("Invalid or expired token")
		}

		c.Locals(PrincipalContextKey, principal)

		return c.Next()
	}
}

// CallbackKeyRequired guards the analysis service callback with a shared key.
// With no key configured every callback is refused.
func CallbackKeyRequired(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		got := c.Get(CallbackKeyHeader)
		if key == "" || got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			return Unauthorized("Invalid callback key")
		}
		return c.Next()
	}
}

func GetPrincipal(c *fiber.Ctx) *domain.Principal {
	principal, ok := c.Locals(PrincipalContextKey).(*domain.Principal)
	if !ok {
		return nil
	}
	return principal
}

func GetCurrentUserID(c *fiber.Ctx) string {
	if principal := GetPrincipal(c); principal != nil {
		return principal.UserID
	}
	return ""
}

// GetActor is the acting user plus the request's idempotency key.
func GetActor(c *fiber.Ctx) domain.Actor {
	return domain.Actor{
		UserID:         GetCurrentUserID(c),
		IdempotencyKey: strings.TrimSpace(c.Get(IdempotencyKeyHeader)),
	}
}
