package identity

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/TokenFox/app/models"
	"github.com/ManuelReschke/TokenFox/app/repository"
)

var (
	// ErrAccountConflict is returned when the provider account cannot be
	// attached to a user, e.g. because linking by email is disabled and the
	// address is already taken, or concurrent logins kept racing.
	ErrAccountConflict = errors.New("provider account conflicts with an existing user")

	errLinkRace = errors.New("provider account was linked concurrently")
)

const maxAttempts = 2

// Identity is the provider-side view of a person after a completed login.
type Identity struct {
	Provider          string
	ProviderAccountID string
	Email             string
	Username          string
}

type transactor interface {
	Transaction(ctx context.Context, fn func(tx *repository.Repositories) error) error
}

// Resolver maps provider identities to local users.
type Resolver struct {
	repos       *repository.Repositories
	tx          transactor
	linkByEmail bool
	now         func() time.Time
}

func NewResolver(repos *repository.Repositories, linkByEmail bool) *Resolver {
	return &Resolver{repos: repos, tx: repos, linkByEmail: linkByEmail, now: time.Now}
}

// ResolveOrCreateUser returns the user linked to id, creating the user and
// the link on first login. Repeated calls with the same id return the same
// user and never create a second link.
func (r *Resolver) ResolveOrCreateUser(ctx context.Context, id Identity) (*models.User, *models.ProviderAccount, error) {
	if id.Provider == "" || id.ProviderAccountID == "" {
		return nil, nil, errors.New("identity without provider account id")
	}

	var (
		user    *models.User
		account *models.ProviderAccount
		err     error
	)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		user, account, err = r.resolve(ctx, id)
		if !errors.Is(err, errLinkRace) {
			break
		}
		log.Printf("[Identity] link race for %s/%s, attempt %d", id.Provider, id.ProviderAccountID, attempt)
	}
	if errors.Is(err, errLinkRace) {
		return nil, nil, fmt.Errorf("%w: %s/%s", ErrAccountConflict, id.Provider, id.ProviderAccountID)
	}
	if err != nil {
		return nil, nil, err
	}

	now := r.now().UTC()
	if err := r.repos.User.TouchLastLogin(ctx, user.ID, now); err != nil {
		log.Printf("[Identity] failed to update last login for user %d: %v", user.ID, err)
	} else {
		user.LastLoginAt = &now
	}
	return user, account, nil
}

func (r *Resolver) resolve(ctx context.Context, id Identity) (*models.User, *models.ProviderAccount, error) {
	var (
		user    *models.User
		account *models.ProviderAccount
	)
	err := r.tx.Transaction(ctx, func(tx *repository.Repositories) error {
		existing, err := tx.ProviderAccount.GetByProviderUserID(ctx, id.Provider, id.ProviderAccountID)
		switch {
		case err == nil:
			u, err := tx.User.GetByID(ctx, existing.UserID)
			if err != nil {
				return fmt.Errorf("load linked user: %w", err)
			}
			user, account = u, existing
			return nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("lookup provider account: %w", err)
		}

		u, err := r.userFor(ctx, tx, id)
		if err != nil {
			return err
		}

		pa := &models.ProviderAccount{
			UserID:         u.ID,
			Provider:       id.Provider,
			ProviderUserID: id.ProviderAccountID,
		}
		created, err := tx.ProviderAccount.CreateIfAbsent(ctx, pa)
		if err != nil {
			return fmt.Errorf("link provider account: %w", err)
		}
		if !created {
			// Either another request linked this provider account first, or
			// the user already holds a different account at this provider.
			if other, err := tx.ProviderAccount.GetByUserAndProvider(ctx, u.ID, id.Provider); err == nil &&
				other.ProviderUserID != id.ProviderAccountID {
				return fmt.Errorf("%w: user %d already linked to another %s account", ErrAccountConflict, u.ID, id.Provider)
			}
			return errLinkRace
		}
		user, account = u, pa
		return nil
	})
	return user, account, err
}

func (r *Resolver) userFor(ctx context.Context, tx *repository.Repositories, id Identity) (*models.User, error) {
	existing, err := tx.User.GetByEmail(ctx, id.Email)
	switch {
	case err == nil:
		if !r.linkByEmail {
			return nil, fmt.Errorf("%w: email %s is already registered", ErrAccountConflict, existing.Email)
		}
		return existing, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}

	candidate, err := models.NewUser(id.Username, id.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid identity: %w", err)
	}
	u, err := tx.User.FirstOrCreateByEmail(ctx, candidate)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// the insert was a no-op but the conflicting row is not readable yet
		return nil, errLinkRace
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if u.ID != candidate.ID && !r.linkByEmail {
		return nil, fmt.Errorf("%w: email %s is already registered", ErrAccountConflict, u.Email)
	}
	return u, nil
}
