package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"docuvault/internal/model"
	"docuvault/internal/service"
)

// IdentityLocalKey is the key under which the authenticated caller is stored
// in Fiber's context locals.
const IdentityLocalKey = "identity"

// CallerIdentity returns the authenticated caller, or nil when the request
// did not pass RequireAuth.
func CallerIdentity(c *fiber.Ctx) *service.Identity {
	ident, _ := c.Locals(IdentityLocalKey).(*service.Identity)
	return ident
}

// RequireAuth validates the Bearer token and stores the caller identity in
// locals. Requests without a valid token get 401.
func RequireAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		ident, err := auth.VerifyToken(c.UserContext(), token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals(IdentityLocalKey, ident)
		return c.Next()
	}
}

// RequireRole allows only callers whose role is in the given set. Must run
// after RequireAuth.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *fiber.Ctx) error {
		ident := CallerIdentity(c)
		if ident == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		if !allowed[ident.Role] {
			return fiber.NewError(fiber.StatusForbidden, "insufficient role")
		}
		return c.Next()
	}
}

// RequireAdmin is shorthand for RequireRole(admin).
func RequireAdmin() fiber.Handler {
	return RequireRole(model.RoleAdmin)
}

// RequireVerified blocks accounts that have not confirmed their email yet.
// Must run after RequireAuth.
func RequireVerified() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ident := CallerIdentity(c)
		if ident == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		if !ident.IsVerified {
			return fiber.NewError(fiber.StatusForbidden, "email verification required")
		}
		return c.Next()
	}
}
