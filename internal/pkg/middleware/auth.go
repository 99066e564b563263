package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/TokenFox/internal/pkg/usercontext"
)

// ErrUnauthorized is returned by RequireAuth. ErrorHandler turns it into a
// redirect to the login entry point.
var ErrUnauthorized = errors.New("login required")

// RequireAuth ensures a logged-in web session.
func RequireAuth(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return ErrUnauthorized
	}
	return c.Next()
}
