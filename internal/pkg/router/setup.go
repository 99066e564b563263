package router

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/html/v2"
	"github.com/google/uuid"

	"github.com/ManuelReschke/TokenFox/app/controllers"
	"github.com/ManuelReschke/TokenFox/app/repository"
	"github.com/ManuelReschke/TokenFox/internal/pkg/config"
	"github.com/ManuelReschke/TokenFox/internal/pkg/identity"
	"github.com/ManuelReschke/TokenFox/internal/pkg/middleware"
	"github.com/ManuelReschke/TokenFox/internal/pkg/oauth"
	"github.com/ManuelReschke/TokenFox/internal/pkg/session"
	"github.com/ManuelReschke/TokenFox/views"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// Dependencies are the components the routes are built from. They are
// constructed once at startup.
type Dependencies struct {
	Config   *config.Config
	Repos    *repository.Repositories
	OAuth    *oauth.Client
	Resolver *identity.Resolver
	Sessions *session.Store
	Health   []controllers.HealthCheck
}

// NewApp builds the fiber app with the global middleware stack and all routes.
func NewApp(deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		Views:                 html.NewFileSystem(http.FS(views.FS), ".html"),
		ViewsLayout:           "layouts/main",
		ErrorHandler:          middleware.ErrorHandler,
		DisableStartupMessage: !deps.Config.Debug,
	})

	// recovery, request ids and logging
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Use(middleware.AllowedHosts(deps.Config))
	app.Use(encryptcookie.New(encryptcookie.Config{Key: deps.Config.SecretKey}))

	InstallRouter(app, deps)
	return app
}

func InstallRouter(app *fiber.App, deps Dependencies) {
	setup(app, NewHttpRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
