package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/TokenFox/app/models"
	"github.com/ManuelReschke/TokenFox/app/repository"
	"github.com/ManuelReschke/TokenFox/internal/pkg/testutil"
)

func seedAccount(t *testing.T, repos *repository.Repositories, email, provider, uid string) (*models.User, *models.ProviderAccount) {
	t.Helper()
	ctx := context.Background()

	candidate, err := models.NewUser("", email)
	require.NoError(t, err)
	user, err := repos.User.FirstOrCreateByEmail(ctx, candidate)
	require.NoError(t, err)

	account := &models.ProviderAccount{UserID: user.ID, Provider: provider, ProviderUserID: uid}
	created, err := repos.ProviderAccount.CreateIfAbsent(ctx, account)
	require.NoError(t, err)
	require.True(t, created)
	return user, account
}

func strPtr(s string) *string { return &s }

func TestGetTokensAbsent(t *testing.T) {
	repos := repository.NewRepositories(testutil.NewDB(t))
	user, _ := seedAccount(t, repos, "a@x.com", "google", "g123")

	record, err := repos.Token.GetTokens(context.Background(), user.ID, "google")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestTokenSaveThenGet(t *testing.T) {
	repos := repository.NewRepositories(testutil.NewDB(t))
	ctx := context.Background()
	user, account := seedAccount(t, repos, "a@x.com", "google", "g123")
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	saved, err := repos.Token.SaveTokens(ctx, account.ID, models.Tokens{
		AccessToken:  "AT1",
		RefreshToken: strPtr("RT1"),
		ExpiresAt:    &exp,
	})
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)

	record, err := repos.Token.GetTokens(ctx, user.ID, "google")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "AT1", record.AccessToken)
	require.NotNil(t, record.RefreshToken)
	assert.Equal(t, "RT1", *record.RefreshToken)
	require.NotNil(t, record.ExpiresAt)
	assert.True(t, record.ExpiresAt.Equal(exp))

	other, err := repos.Token.GetTokens(ctx, user.ID, "openid-connect")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestTokenSaveReplacesEveryColumn(t *testing.T) {
	repos := repository.NewRepositories(testutil.NewDB(t))
	ctx := context.Background()
	user, account := seedAccount(t, repos, "a@x.com", "google", "g123")
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	first, err := repos.Token.SaveTokens(ctx, account.ID, models.Tokens{AccessToken: "AT1", RefreshToken: strPtr("RT1"), ExpiresAt: &exp})
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	second, err := repos.Token.SaveTokens(ctx, account.ID, models.Tokens{AccessToken: "AT2"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "AT2", second.AccessToken)

	record, err := repos.Token.GetTokens(ctx, user.ID, "google")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "AT2", record.AccessToken)
	assert.Nil(t, record.RefreshToken, "a login without refresh token must clear the old one")
	assert.Nil(t, record.ExpiresAt)
	assert.False(t, record.HasRefreshToken())

	count, err := repos.Token.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestTokenRecordsAreScopedToTheirUser(t *testing.T) {
	repos := repository.NewRepositories(testutil.NewDB(t))
	ctx := context.Background()
	alice, aliceAccount := seedAccount(t, repos, "a@x.com", "google", "g123")
	bob, _ := seedAccount(t, repos, "b@x.com", "google", "g456")

	_, err := repos.Token.SaveTokens(ctx, aliceAccount.ID, models.Tokens{AccessToken: "AT-alice"})
	require.NoError(t, err)

	record, err := repos.Token.GetTokens(ctx, alice.ID, "google")
	require.NoError(t, err)
	require.NotNil(t, record)

	record, err = repos.Token.GetTokens(ctx, bob.ID, "google")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestProviderAccountCreateIfAbsent(t *testing.T) {
	repos := repository.NewRepositories(testutil.NewDB(t))
	ctx := context.Background()
	user, account := seedAccount(t, repos, "a@x.com", "google", "g123")

	dup := &models.ProviderAccount{UserID: user.ID, Provider: "google", ProviderUserID: "g123"}
	created, err := repos.ProviderAccount.CreateIfAbsent(ctx, dup)
	require.NoError(t, err)
	assert.False(t, created)

	found, err := repos.ProviderAccount.GetByProviderUserID(ctx, "google", "g123")
	require.NoError(t, err)
	assert.Equal(t, account.ID, found.ID)

	found, err = repos.ProviderAccount.GetByUserAndProvider(ctx, user.ID, "google")
	require.NoError(t, err)
	assert.Equal(t, account.ID, found.ID)
}

func TestUserFirstOrCreateByEmail(t *testing.T) {
	repos := repository.NewRepositories(testutil.NewDB(t))
	ctx := context.Background()

	u1, err := models.NewUser("alice", "a@x.com")
	require.NoError(t, err)
	first, err := repos.User.FirstOrCreateByEmail(ctx, u1)
	require.NoError(t, err)

	u2, err := models.NewUser("someone-else", "A@x.com")
	require.NoError(t, err)
	second, err := repos.User.FirstOrCreateByEmail(ctx, u2)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "alice", second.Username)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repos.User.TouchLastLogin(ctx, first.ID, now))
	reloaded, err := repos.User.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastLoginAt)
	assert.True(t, reloaded.LastLoginAt.Equal(now))
}
