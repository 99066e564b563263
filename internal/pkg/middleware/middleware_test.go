package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/TokenFox/internal/pkg/usercontext"
)

type hostList []string

func (h hostList) HostAllowed(host string) bool {
	for _, allowed := range h {
		if host == allowed {
			return true
		}
	}
	return false
}

func newTestApp(loggedIn bool) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(AllowedHosts(hostList{"localhost"}))
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(usercontext.KeyUserContext, usercontext.UserContext{UserID: 7, IsLoggedIn: loggedIn})
		return c.Next()
	})
	app.Get("/private", RequireAuth, func(c *fiber.Ctx) error {
		return c.SendString("secret")
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("db password is hunter2")
	})
	app.Get("/teapot", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})
	return app
}

func request(t *testing.T, app *fiber.App, host, path string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Host = host
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestRequireAuthRedirectsAnonymous(t *testing.T) {
	resp := request(t, newTestApp(false), "localhost", "/private")
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/accounts/login/", resp.Header.Get(fiber.HeaderLocation))
}

func TestRequireAuthPassesLoggedIn(t *testing.T) {
	resp := request(t, newTestApp(true), "localhost", "/private")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestErrorHandlerHidesInternalErrors(t *testing.T) {
	resp := request(t, newTestApp(true), "localhost", "/boom")
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	buf := make([]byte, 256)
	n, _ := resp.Body.Read(buf)
	assert.NotContains(t, string(buf[:n]), "hunter2")
}

func TestErrorHandlerKeepsFiberErrors(t *testing.T) {
	resp := request(t, newTestApp(true), "localhost", "/teapot")
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
}

func TestAllowedHosts(t *testing.T) {
	app := newTestApp(true)
	assert.Equal(t, fiber.StatusBadRequest, request(t, app, "evil.example", "/private").StatusCode)
	assert.Equal(t, fiber.StatusOK, request(t, app, "localhost", "/private").StatusCode)
}
