package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/url"

	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"
	"github.com/sujit-baniya/flash"

	"github.com/ManuelReschke/TokenFox/app/models"
	"github.com/ManuelReschke/TokenFox/app/repository"
	"github.com/ManuelReschke/TokenFox/internal/pkg/constants"
	"github.com/ManuelReschke/TokenFox/internal/pkg/identity"
	"github.com/ManuelReschke/TokenFox/internal/pkg/oauth"
	"github.com/ManuelReschke/TokenFox/internal/pkg/session"
)

// OAuthController drives a login attempt from the redirect to the provider
// until the session is bound to a local user.
type OAuthController struct {
	client   *oauth.Client
	resolver *identity.Resolver
	repos    *repository.Repositories
	store    *session.Store
}

func NewOAuthController(client *oauth.Client, resolver *identity.Resolver, repos *repository.Repositories, store *session.Store) *OAuthController {
	return &OAuthController{
		client:   client,
		resolver: resolver,
		repos:    repos,
		store:    store,
	}
}

// HandleBegin starts a new authorization and sends the browser to the
// provider's consent screen.
func (oc *OAuthController) HandleBegin(c *fiber.Ctx) error {
	name, err := gothfiber.GetProviderName(c)
	if err != nil || !oc.client.Has(name) {
		return fiber.ErrNotFound
	}

	pending, authURL, err := oc.client.BeginAuthorization(name)
	if err != nil {
		return oc.failLogin(c, err)
	}
	if err := oc.store.SavePending(c, pending); err != nil {
		return fmt.Errorf("store pending authorization: %w", err)
	}
	return c.Redirect(authURL, fiber.StatusFound)
}

// HandleCallback completes the provider flow, persists the tokens and logs
// the user in.
func (oc *OAuthController) HandleCallback(c *fiber.Ctx) error {
	name, err := gothfiber.GetProviderName(c)
	if err != nil || !oc.client.Has(name) {
		return fiber.ErrNotFound
	}

	// taken before validation, so a state can never be replayed
	pending, err := oc.store.TakePending(c)
	if err != nil {
		return fmt.Errorf("load pending authorization: %w", err)
	}

	params, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		return oc.failLogin(c, fmt.Errorf("%w: malformed callback query: %w", oauth.ErrProvider, err))
	}

	ctx := c.UserContext()
	res, err := oc.client.CompleteAuthorization(ctx, pending, name, params)
	if err != nil {
		return oc.failLogin(c, err)
	}

	user, account, err := oc.resolver.ResolveOrCreateUser(ctx, identity.Identity{
		Provider:          res.Provider,
		ProviderAccountID: res.ProviderAccountID,
		Email:             res.Email,
		Username:          firstNonEmpty(res.NickName, res.Name),
	})
	if errors.Is(err, identity.ErrAccountConflict) {
		return oc.failLogin(c, err)
	}
	if err != nil {
		return fmt.Errorf("resolve user: %w", err)
	}

	if _, err := oc.repos.Token.SaveTokens(ctx, account.ID, models.Tokens{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresAt:    res.ExpiresAt,
	}); err != nil {
		return fmt.Errorf("save tokens: %w", err)
	}

	if err := oc.store.Login(c, user.ID, user.Username); err != nil {
		return fmt.Errorf("bind session: %w", err)
	}

	log.Printf("[OAuth] user %d logged in via %s (refresh token: %t)", user.ID, res.Provider, res.RefreshToken != nil)
	return c.Redirect(constants.RouteProfile, fiber.StatusFound)
}

// HandleLogout ends the session.
func (oc *OAuthController) HandleLogout(c *fiber.Ctx) error {
	if err := oc.store.Logout(c); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return c.Redirect(constants.RouteHome, fiber.StatusFound)
}

// failLogin sends the browser back home with an error code. The detail is
// only logged.
func (oc *OAuthController) failLogin(c *fiber.Ctx, err error) error {
	code := loginErrorCode(err)
	log.Printf("[OAuth] login failed (%s): %v", code, err)

	fm := fiber.Map{
		"type":    "error",
		"code":    code,
		"message": loginErrorMessage(code),
	}
	return flash.WithError(c, fm).Redirect(constants.RouteHome + "?error=" + url.QueryEscape(code))
}

func loginErrorCode(err error) string {
	if errors.Is(err, identity.ErrAccountConflict) {
		return "account_conflict"
	}
	return oauth.ErrorCode(err)
}

func loginErrorMessage(code string) string {
	if code == "account_conflict" {
		return "This sign-in cannot be attached to your existing account. Please contact the site owner."
	}
	return oauth.Message(code)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
