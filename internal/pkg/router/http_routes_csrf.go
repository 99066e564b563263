package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"

	"github.com/ManuelReschke/TokenFox/internal/pkg/constants"
	"github.com/ManuelReschke/TokenFox/internal/pkg/middleware"
	"github.com/ManuelReschke/TokenFox/internal/pkg/viewmodel"
)

func (h HttpRouter) registerCSRFProtectedRoutes(app *fiber.App) {
	csrfConf := csrf.Config{
		KeyLookup:      "form:_csrf",
		ContextKey:     viewmodel.CSRFContextKey,
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieHTTPOnly: true,
		Expiration:     1 * time.Hour,
		CookieSecure:   !h.deps.Config.Debug,
	}

	group := app.Group("", csrf.New(csrfConf))
	group.Get(constants.RouteHome, h.main.HandleHome)
	group.Get(constants.RouteLogin, h.main.HandleLogin)
	group.Get(constants.RouteProfile, middleware.RequireAuth, h.profile.HandleProfile)
	group.Post(constants.RouteLogout, middleware.RequireAuth, h.oauth.HandleLogout)
}
