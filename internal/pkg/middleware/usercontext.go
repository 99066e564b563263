package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/TokenFox/internal/pkg/session"
	"github.com/ManuelReschke/TokenFox/internal/pkg/usercontext"
)

// UserContextMiddleware resolves the session into a usercontext.UserContext
// for every request. Anonymous requests get the zero value.
func UserContextMiddleware(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userCtx := usercontext.UserContext{}
		if userID, username, ok := store.User(c); ok {
			userCtx = usercontext.UserContext{
				UserID:     userID,
				Username:   username,
				IsLoggedIn: true,
			}
		}
		c.Locals(usercontext.KeyUserContext, userCtx)
		return c.Next()
	}
}
