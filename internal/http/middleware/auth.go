package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"linkvault/internal/model"
)

// IdentityLocalKey is the key used to store the verified caller identity in
// Fiber's context locals.
const IdentityLocalKey = "identity"

// TokenValidator verifies a bearer token and resolves the caller identity.
type TokenValidator interface {
	ValidateToken(token string) (*model.Identity, error)
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireAuth rejects requests without a valid bearer token and stores the
// resolved identity in context locals.
func RequireAuth(v TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		ident, err := v.ValidateToken(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}
		c.Locals(IdentityLocalKey, ident)
		return c.Next()
	}
}

// OptionalAuth resolves an identity when a valid bearer token is present and
// otherwise lets the request pass anonymously. An invalid token is treated as
// no token, matching the upload path's tolerance for stale sessions.
func OptionalAuth(v TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearerToken(c); token != "" {
			if ident, err := v.ValidateToken(token); err == nil {
				c.Locals(IdentityLocalKey, ident)
			}
		}
		return c.Next()
	}
}

// IdentityFromCtx extracts the identity stored by RequireAuth/OptionalAuth.
// Returns nil for anonymous requests.
func IdentityFromCtx(c *fiber.Ctx) *model.Identity {
	if v := c.Locals(IdentityLocalKey); v != nil {
		if ident, ok := v.(*model.Identity); ok {
			return ident
		}
	}
	return nil
}
