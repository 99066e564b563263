package controllers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ManuelReschke/TokenFox/app/repository"
	"github.com/ManuelReschke/TokenFox/internal/pkg/middleware"
	"github.com/ManuelReschke/TokenFox/internal/pkg/session"
	"github.com/ManuelReschke/TokenFox/internal/pkg/usercontext"
	"github.com/ManuelReschke/TokenFox/internal/pkg/viewmodel"
)

// ProfileController shows the stored credentials of the logged-in user.
type ProfileController struct {
	provider string
	repos    *repository.Repositories
	store    *session.Store
}

func NewProfileController(provider string, repos *repository.Repositories, store *session.Store) *ProfileController {
	return &ProfileController{
		provider: provider,
		repos:    repos,
		store:    store,
	}
}

// HandleProfile renders the token page. Must run behind middleware.RequireAuth.
func (pc *ProfileController) HandleProfile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := usercontext.GetUserID(c)

	user, err := pc.repos.User.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// session outlived its user
		_ = pc.store.Logout(c)
		return middleware.ErrUnauthorized
	}
	if err != nil {
		return fmt.Errorf("load user %d: %w", userID, err)
	}

	record, err := pc.repos.Token.GetTokens(ctx, user.ID, pc.provider)
	if err != nil {
		return fmt.Errorf("load tokens of user %d: %w", userID, err)
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	layout := viewmodel.NewLayout(c, "Profile")
	return c.Render("profile", layout.Bind(fiber.Map{
		"ProviderLabel": viewmodel.ProviderLabel(pc.provider),
		"Profile":       viewmodel.NewProfile(user, pc.provider, record),
	}))
}
