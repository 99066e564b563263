package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// HostChecker reports whether a Host header may be served.
type HostChecker interface {
	HostAllowed(host string) bool
}

// AllowedHosts rejects requests whose Host header is not configured.
func AllowedHosts(hosts HostChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !hosts.HostAllowed(c.Hostname()) {
			log.Printf("[Hosts] rejected request for host %q", c.Hostname())
			return fiber.NewError(fiber.StatusBadRequest, "Bad Request")
		}
		return c.Next()
	}
}
