package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/ManuelReschke/TokenFox/internal/pkg/constants"
	"github.com/ManuelReschke/TokenFox/internal/pkg/usercontext"
	"github.com/ManuelReschke/TokenFox/internal/pkg/viewmodel"
)

// MainController renders the public landing pages.
type MainController struct {
	provider string
}

func NewMainController(provider string) *MainController {
	return &MainController{provider: provider}
}

// HandleHome is the public start page.
func (mc *MainController) HandleHome(c *fiber.Ctx) error {
	return mc.renderLanding(c, "")
}

// HandleLogin is the login entry point unauthenticated visitors of protected
// pages are sent to.
func (mc *MainController) HandleLogin(c *fiber.Ctx) error {
	return mc.renderLanding(c, "Sign in")
}

func (mc *MainController) renderLanding(c *fiber.Ctx, title string) error {
	if usercontext.IsLoggedIn(c) {
		return c.Redirect(constants.RouteProfile, fiber.StatusFound)
	}

	layout := viewmodel.NewLayout(c, title)
	layout.Msg = flash.Get(c)

	code := c.Query("error")
	message := loginErrorMessage(code)
	if m, ok := layout.Msg["message"].(string); ok && m != "" && message != "" {
		message = m
	}
	if message == "" {
		code = ""
	}

	return c.Render("home", layout.Bind(fiber.Map{
		"ProviderLabel": viewmodel.ProviderLabel(mc.provider),
		"LoginURL":      constants.ProviderLoginPath(mc.provider),
		"Error":         message,
		"ErrorCode":     code,
	}))
}
