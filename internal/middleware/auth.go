// Package middleware provides the fiber middleware shared by the HTTP routes.
package middleware

import (
	"log/slog"

	"postboard/internal/auth"
	"postboard/internal/identity"
	"postboard/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// LocalsIdentity is the fiber locals key holding the verified *identity.Identity.
const LocalsIdentity = "identity"

// ForwardToken copies the authtoken header into the request context without
// verifying it. Resolvers that need a caller verify it through the gate.
func ForwardToken() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := c.Get(auth.HeaderName); token != "" {
			c.SetUserContext(auth.WithToken(c.UserContext(), token))
		}
		return c.Next()
	}
}

// RequireToken rejects requests whose authtoken header does not verify.
// The verified identity is stored in locals and its subject in the logging context.
func RequireToken(verifier identity.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get(auth.HeaderName)
		id, err := verifier.Verify(c.UserContext(), token)
		if err != nil {
			observability.Logger.DebugContext(c.UserContext(), "rest request rejected",
				slog.String("path", c.Path()),
				slog.String("error", err.Error()),
			)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		c.Locals(LocalsIdentity, id)
		ctx := auth.WithToken(c.UserContext(), token)
		ctx = observability.WithAccountID(ctx, id.UID)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// IdentityFrom returns the identity stored by RequireToken, or nil.
func IdentityFrom(c *fiber.Ctx) *identity.Identity {
	id, _ := c.Locals(LocalsIdentity).(*identity.Identity)
	return id
}
