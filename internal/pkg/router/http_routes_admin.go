package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/monitor"

	"github.com/ManuelReschke/TokenFox/internal/pkg/constants"
)

// registerAdminRoutes mounts the fiber monitor when metrics credentials are
// configured. Without them the route does not exist.
func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	cfg := h.deps.Config
	if !cfg.MetricsEnabled() {
		return
	}
	app.Get(constants.RouteMetrics, basicauth.New(basicauth.Config{
		Users: map[string]string{
			cfg.Metrics.User: cfg.Metrics.Password,
		},
	}), monitor.New(monitor.Config{Title: "TokenFox Metrics"}))
}
