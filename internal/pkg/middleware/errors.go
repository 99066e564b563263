package middleware

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/ManuelReschke/TokenFox/internal/pkg/constants"
)

// ErrorHandler is the fiber.Config ErrorHandler. Unexpected errors are logged
// and answered with a generic 500 that never echoes internal details.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrUnauthorized) {
		return c.Redirect(constants.RouteLogin, fiber.StatusFound)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).SendString(fe.Message)
	}

	log.Printf("[Error] %s %s (request %v): %v", c.Method(), c.Path(), c.Locals(requestid.ConfigDefault.ContextKey), err)
	return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
}
