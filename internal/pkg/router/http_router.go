package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/TokenFox/app/controllers"
	"github.com/ManuelReschke/TokenFox/internal/pkg/middleware"
)

type HttpRouter struct {
	deps Dependencies

	main    *controllers.MainController
	oauth   *controllers.OAuthController
	profile *controllers.ProfileController
	health  *controllers.HealthController
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// Apply UserContext middleware globally before any route
	app.Use(middleware.UserContextMiddleware(h.deps.Sessions))

	h.registerAdminRoutes(app)
	h.registerPublicRoutes(app)
	h.registerCSRFProtectedRoutes(app)
}

func NewHttpRouter(deps Dependencies) *HttpRouter {
	provider := deps.Config.OAuth.Provider
	return &HttpRouter{
		deps:    deps,
		main:    controllers.NewMainController(provider),
		oauth:   controllers.NewOAuthController(deps.OAuth, deps.Resolver, deps.Repos, deps.Sessions),
		profile: controllers.NewProfileController(provider, deps.Repos, deps.Sessions),
		health:  controllers.NewHealthController(deps.Health...),
	}
}
