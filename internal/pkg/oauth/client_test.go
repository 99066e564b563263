package oauth

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/markbates/goth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/TokenFox/internal/pkg/testutil"
)

func newTestClient(t *testing.T) (*Client, *testutil.FakeProvider) {
	t.Helper()
	p := testutil.NewFakeProvider("google")
	p.SetUser(goth.User{
		UserID:       "g123",
		Email:        "a@x.com",
		NickName:     "alice",
		AccessToken:  "AT1",
		RefreshToken: "RT1",
		ExpiresAt:    time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	return NewClient(time.Second, p), p
}

func callback(state string) url.Values {
	return url.Values{"state": {state}, "code": {"auth-code"}}
}

func TestBeginAuthorizationRequestsOfflineAccess(t *testing.T) {
	c, _ := newTestClient(t)

	pending, authURL, err := c.BeginAuthorization("google")
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, "google", pending.Provider)
	assert.Len(t, pending.State, 64)
	assert.NotEmpty(t, pending.Session)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, pending.State, q.Get("state"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Contains(t, q.Get("scope"), "email")
}

func TestBeginAuthorizationFreshStateEachTime(t *testing.T) {
	c, _ := newTestClient(t)

	first, _, err := c.BeginAuthorization("google")
	require.NoError(t, err)
	second, _, err := c.BeginAuthorization("google")
	require.NoError(t, err)
	assert.NotEqual(t, first.State, second.State)
}

func TestBeginAuthorizationUnknownProvider(t *testing.T) {
	c, _ := newTestClient(t)

	_, _, err := c.BeginAuthorization("myspace")
	assert.ErrorIs(t, err, ErrUnknownProvider)
	assert.False(t, c.Has("myspace"))
	assert.True(t, c.Has("google"))
}

func TestCompleteAuthorizationSuccess(t *testing.T) {
	c, p := newTestClient(t)
	pending, _, err := c.BeginAuthorization("google")
	require.NoError(t, err)

	res, err := c.CompleteAuthorization(context.Background(), pending, "google", callback(pending.State))
	require.NoError(t, err)

	assert.Equal(t, "google", res.Provider)
	assert.Equal(t, "g123", res.ProviderAccountID)
	assert.Equal(t, "a@x.com", res.Email)
	assert.Equal(t, "AT1", res.AccessToken)
	require.NotNil(t, res.RefreshToken)
	assert.Equal(t, "RT1", *res.RefreshToken)
	require.NotNil(t, res.ExpiresAt)
	assert.True(t, res.ExpiresAt.Equal(time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)))
	assert.Equal(t, []string{"auth-code"}, p.Codes())
}

func TestCompleteAuthorizationWithoutRefreshTokenOrExpiry(t *testing.T) {
	c, p := newTestClient(t)
	p.SetUser(goth.User{UserID: "g123", Email: "a@x.com", AccessToken: "AT2"})
	pending, _, err := c.BeginAuthorization("google")
	require.NoError(t, err)

	res, err := c.CompleteAuthorization(context.Background(), pending, "google", callback(pending.State))
	require.NoError(t, err)
	assert.Equal(t, "AT2", res.AccessToken)
	assert.Nil(t, res.RefreshToken)
	assert.Nil(t, res.ExpiresAt)
}

func TestCompleteAuthorizationInvalidState(t *testing.T) {
	c, p := newTestClient(t)
	pending, _, err := c.BeginAuthorization("google")
	require.NoError(t, err)

	tests := []struct {
		name     string
		pending  *Pending
		provider string
		params   url.Values
	}{
		{"no pending authorization", nil, "google", callback(pending.State)},
		{"empty pending state", &Pending{Provider: "google"}, "google", callback("")},
		{"state mismatch", pending, "google", callback("forged")},
		{"missing state", pending, "google", url.Values{"code": {"auth-code"}}},
		{"provider mismatch", pending, "github", callback(pending.State)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.CompleteAuthorization(context.Background(), tt.pending, tt.provider, tt.params)
			assert.ErrorIs(t, err, ErrInvalidState)
			assert.Equal(t, "invalid_state", ErrorCode(err))
		})
	}
	assert.Empty(t, p.Codes(), "no code may be exchanged for a rejected callback")
}

func TestCompleteAuthorizationMissingScope(t *testing.T) {
	c, p := newTestClient(t)
	pending, _, err := c.BeginAuthorization("google")
	require.NoError(t, err)

	denied := url.Values{"state": {pending.State}, "error": {"access_denied"}}
	_, err = c.CompleteAuthorization(context.Background(), pending, "google", denied)
	assert.ErrorIs(t, err, ErrMissingScope)

	noEmail := callback(pending.State)
	noEmail.Set("scope", "openid https://www.googleapis.com/auth/userinfo.profile")
	_, err = c.CompleteAuthorization(context.Background(), pending, "google", noEmail)
	assert.ErrorIs(t, err, ErrMissingScope)

	noIdentity := callback(pending.State)
	noIdentity.Set("scope", "https://www.googleapis.com/auth/userinfo.email")
	_, err = c.CompleteAuthorization(context.Background(), pending, "google", noIdentity)
	assert.ErrorIs(t, err, ErrMissingScope)

	p.SetUser(goth.User{UserID: "g123", AccessToken: "AT1"})
	_, err = c.CompleteAuthorization(context.Background(), pending, "google", callback(pending.State))
	assert.ErrorIs(t, err, ErrMissingScope)
	assert.Equal(t, "missing_scope", ErrorCode(err))
}

func TestCompleteAuthorizationGrantedScopesAccepted(t *testing.T) {
	c, _ := newTestClient(t)
	pending, _, err := c.BeginAuthorization("google")
	require.NoError(t, err)

	params := callback(pending.State)
	params.Set("scope", "email profile https://www.googleapis.com/auth/userinfo.email openid https://www.googleapis.com/auth/userinfo.profile")
	_, err = c.CompleteAuthorization(context.Background(), pending, "google", params)
	assert.NoError(t, err)
}

func TestCompleteAuthorizationProviderErrors(t *testing.T) {
	t.Run("error parameter", func(t *testing.T) {
		c, _ := newTestClient(t)
		pending, _, err := c.BeginAuthorization("google")
		require.NoError(t, err)
		params := url.Values{"state": {pending.State}, "error": {"server_error"}}
		_, err = c.CompleteAuthorization(context.Background(), pending, "google", params)
		assert.ErrorIs(t, err, ErrProvider)
	})

	t.Run("missing code", func(t *testing.T) {
		c, _ := newTestClient(t)
		pending, _, err := c.BeginAuthorization("google")
		require.NoError(t, err)
		_, err = c.CompleteAuthorization(context.Background(), pending, "google", url.Values{"state": {pending.State}})
		assert.ErrorIs(t, err, ErrProvider)
	})

	t.Run("exchange fails", func(t *testing.T) {
		c, p := newTestClient(t)
		p.FailAuthorize(errors.New("oauth2: cannot fetch token: 400 Bad Request"))
		pending, _, err := c.BeginAuthorization("google")
		require.NoError(t, err)
		_, err = c.CompleteAuthorization(context.Background(), pending, "google", callback(pending.State))
		assert.ErrorIs(t, err, ErrProvider)
		assert.Contains(t, err.Error(), "400 Bad Request")
		assert.Equal(t, "provider_error", ErrorCode(err))
	})

	t.Run("user info fails", func(t *testing.T) {
		c, p := newTestClient(t)
		p.FailFetch(errors.New("userinfo: 503"))
		pending, _, err := c.BeginAuthorization("google")
		require.NoError(t, err)
		_, err = c.CompleteAuthorization(context.Background(), pending, "google", callback(pending.State))
		assert.ErrorIs(t, err, ErrProvider)
	})
}

func TestCompleteAuthorizationTimesOut(t *testing.T) {
	p := testutil.NewFakeProvider("google")
	p.SetUser(goth.User{UserID: "g123", Email: "a@x.com", AccessToken: "AT1"})
	p.SetDelay(500 * time.Millisecond)
	c := NewClient(20*time.Millisecond, p)

	pending, _, err := c.BeginAuthorization("google")
	require.NoError(t, err)

	start := time.Now()
	_, err = c.CompleteAuthorization(context.Background(), pending, "google", callback(pending.State))
	assert.ErrorIs(t, err, ErrProvider)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestMessage(t *testing.T) {
	for _, code := range []string{"invalid_state", "missing_scope", "provider_error"} {
		assert.NotEmpty(t, Message(code), code)
	}
	assert.Empty(t, Message("bogus"))
}
