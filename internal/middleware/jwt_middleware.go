package middleware

import (
	"strings"

	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// SessionTokenCookie carries the signed session token set at sign-in.
const SessionTokenCookie = "session-token"

const identityKey = "identity"

// credentials reads the session cart id and the session token. A bearer
// Authorization header wins over the cookie. Values are copied because fiber
// reuses its buffers after the handler returns.
func credentials(c *fiber.Ctx) services.Credentials {
	creds := services.Credentials{
		SessionCartID: strings.Clone(c.Cookies(SessionCartCookie)),
	}

	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		creds.Token = strings.Clone(strings.TrimSpace(parts[1]))
	} else {
		creds.Token = strings.Clone(c.Cookies(SessionTokenCookie))
	}
	return creds
}

// IdentityFrom returns the identity Guard stored for the request, or an
// anonymous identity when Guard did not run.
func IdentityFrom(c *fiber.Ctx) services.Identity {
	id, _ := c.Locals(identityKey).(services.Identity)
	return id
}

// AuthRequired rejects requests without a verified user.
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !IdentityFrom(c).IsAuthenticated() {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}
		return c.Next()
	}
}
