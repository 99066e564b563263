package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/TokenFox/internal/pkg/constants"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	app.Get(constants.RouteHealth, h.health.HandleHealth)

	// Social OAuth
	app.Get(constants.ProviderLoginPath(":provider"), h.oauth.HandleBegin)
	app.Get(constants.ProviderCallbackPath(":provider"), h.oauth.HandleCallback)
}
