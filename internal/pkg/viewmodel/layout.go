package viewmodel

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/TokenFox/internal/pkg/config"
	"github.com/ManuelReschke/TokenFox/internal/pkg/usercontext"
)

// CSRFContextKey is where the csrf middleware leaves the token for templates.
const CSRFContextKey = "csrf"

type Layout struct {
	Title      string
	IsLoggedIn bool
	Username   string
	CSRFToken  string
	Msg        fiber.Map
}

// NewLayout fills the values every page shares from the request.
func NewLayout(c *fiber.Ctx, title string) Layout {
	userCtx := usercontext.GetUserContext(c)
	token, _ := c.Locals(CSRFContextKey).(string)
	return Layout{
		Title:      title,
		IsLoggedIn: userCtx.IsLoggedIn,
		Username:   userCtx.Username,
		CSRFToken:  token,
	}
}

// Bind merges the layout values into the page binding.
func (l Layout) Bind(page fiber.Map) fiber.Map {
	m := fiber.Map{
		"Title":      l.Title,
		"IsLoggedIn": l.IsLoggedIn,
		"Username":   l.Username,
		"CSRFToken":  l.CSRFToken,
		"Msg":        l.Msg,
	}
	for k, v := range page {
		m[k] = v
	}
	return m
}

// ProviderLabel is the human name of a configured provider.
func ProviderLabel(provider string) string {
	switch provider {
	case config.ProviderGoogle:
		return "Google"
	case config.ProviderOIDC:
		return "OpenID Connect"
	default:
		return provider
	}
}
