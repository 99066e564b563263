package repository

import (
	"context"
	"time"

	"github.com/ManuelReschke/TokenFox/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// FirstOrCreateByEmail inserts user unless a row with the same email
	// exists, and returns the stored row either way.
	FirstOrCreateByEmail(ctx context.Context, user *models.User) (*models.User, error)
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
	Count(ctx context.Context) (int64, error)
}

// ProviderAccountRepository defines the interface for linked provider identities
type ProviderAccountRepository interface {
	GetByProviderUserID(ctx context.Context, provider, providerUserID string) (*models.ProviderAccount, error)
	GetByUserAndProvider(ctx context.Context, userID uint, provider string) (*models.ProviderAccount, error)
	// CreateIfAbsent inserts the account and reports false when a unique key
	// already held a row, in which case nothing was written.
	CreateIfAbsent(ctx context.Context, account *models.ProviderAccount) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// TokenRepository is the credential store: one token record per provider account
type TokenRepository interface {
	// SaveTokens upserts the record of providerAccountID, replacing every
	// credential column of a prior record.
	SaveTokens(ctx context.Context, providerAccountID uint, tokens models.Tokens) (*models.TokenRecord, error)
	// GetTokens returns nil, nil when the user never completed the flow for
	// provider.
	GetTokens(ctx context.Context, userID uint, provider string) (*models.TokenRecord, error)
	Count(ctx context.Context) (int64, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	db *gorm.DB

	User            UserRepository
	ProviderAccount ProviderAccountRepository
	Token           TokenRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:              db,
		User:            NewUserRepository(db),
		ProviderAccount: NewProviderAccountRepository(db),
		Token:           NewTokenRepository(db),
	}
}
