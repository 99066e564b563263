package oauth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/markbates/goth"
)

// Pending is an authorization that was started but not completed yet. It is
// kept server-side in the user's session between the two legs of the flow.
type Pending struct {
	Provider string
	State    string
	Session  string
}

// Result is what a completed authorization yields.
type Result struct {
	Provider          string
	ProviderAccountID string
	Email             string
	Name              string
	NickName          string
	AccessToken       string
	RefreshToken      *string
	ExpiresAt         *time.Time
}

// Client runs the authorization-code flow against configured goth providers.
type Client struct {
	providers map[string]goth.Provider
	timeout   time.Duration
}

func NewClient(timeout time.Duration, providers ...goth.Provider) *Client {
	c := &Client{
		providers: make(map[string]goth.Provider, len(providers)),
		timeout:   timeout,
	}
	for _, p := range providers {
		c.providers[p.Name()] = p
	}
	return c
}

// Has reports whether name is a configured provider.
func (c *Client) Has(name string) bool {
	_, ok := c.providers[name]
	return ok
}

// BeginAuthorization starts a new attempt and returns the provider URL the
// browser has to be sent to.
func (c *Client) BeginAuthorization(name string) (*Pending, string, error) {
	p, ok := c.providers[name]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}

	state, err := newState()
	if err != nil {
		return nil, "", fmt.Errorf("generate state: %w", err)
	}
	sess, err := p.BeginAuth(state)
	if err != nil {
		return nil, "", fmt.Errorf("%w: begin auth: %w", ErrProvider, err)
	}
	authURL, err := sess.GetAuthURL()
	if err != nil {
		return nil, "", fmt.Errorf("%w: auth url: %w", ErrProvider, err)
	}

	return &Pending{Provider: name, State: state, Session: sess.Marshal()}, authURL, nil
}

// CompleteAuthorization validates the callback against pending, exchanges
// the code and fetches the provider account.
func (c *Client) CompleteAuthorization(ctx context.Context, pending *Pending, name string, params url.Values) (*Result, error) {
	if pending == nil || pending.State == "" {
		return nil, fmt.Errorf("%w: no authorization in progress", ErrInvalidState)
	}
	if pending.Provider != name {
		return nil, fmt.Errorf("%w: started with %q, callback for %q", ErrInvalidState, pending.Provider, name)
	}
	if subtle.ConstantTimeCompare([]byte(params.Get("state")), []byte(pending.State)) != 1 {
		return nil, fmt.Errorf("%w: state mismatch", ErrInvalidState)
	}
	p, ok := c.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}

	if e := params.Get("error"); e != "" {
		if e == "access_denied" {
			return nil, fmt.Errorf("%w: consent denied", ErrMissingScope)
		}
		return nil, fmt.Errorf("%w: %s: %s", ErrProvider, e, params.Get("error_description"))
	}
	if granted := params.Get("scope"); granted != "" {
		if err := checkScopes(granted); err != nil {
			return nil, err
		}
	}
	if params.Get("code") == "" {
		return nil, fmt.Errorf("%w: callback without authorization code", ErrProvider)
	}

	sess, err := p.UnmarshalSession(pending.Session)
	if err != nil {
		return nil, fmt.Errorf("%w: restore session: %w", ErrInvalidState, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	user, err := exchange(ctx, p, sess, params)
	if err != nil {
		return nil, err
	}
	if user.UserID == "" {
		return nil, fmt.Errorf("%w: provider returned no account id", ErrMissingScope)
	}
	if user.Email == "" {
		return nil, fmt.Errorf("%w: provider returned no email", ErrMissingScope)
	}

	res := &Result{
		Provider:          name,
		ProviderAccountID: user.UserID,
		Email:             user.Email,
		Name:              user.Name,
		NickName:          user.NickName,
		AccessToken:       user.AccessToken,
	}
	if user.RefreshToken != "" {
		rt := user.RefreshToken
		res.RefreshToken = &rt
	}
	if !user.ExpiresAt.IsZero() {
		exp := user.ExpiresAt.UTC()
		res.ExpiresAt = &exp
	}
	return res, nil
}

// exchange runs the blocking goth calls and gives up when ctx expires. The
// provider HTTP client carries the same timeout, so the goroutine does not
// outlive the request by much.
func exchange(ctx context.Context, p goth.Provider, sess goth.Session, params url.Values) (goth.User, error) {
	type outcome struct {
		user goth.User
		err  error
	}
	done := make(chan outcome, 1)

	go func() {
		if _, err := sess.Authorize(p, params); err != nil {
			done <- outcome{err: fmt.Errorf("%w: exchange code: %w", ErrProvider, err)}
			return
		}
		user, err := p.FetchUser(sess)
		if err != nil {
			done <- outcome{err: fmt.Errorf("%w: fetch user: %w", ErrProvider, err)}
			return
		}
		done <- outcome{user: user}
	}()

	select {
	case <-ctx.Done():
		return goth.User{}, fmt.Errorf("%w: %w", ErrProvider, ctx.Err())
	case out := <-done:
		return out.user, out.err
	}
}

// checkScopes verifies that the space-separated scope list a provider echoes
// back contains an identity scope and an email scope.
func checkScopes(granted string) error {
	var identity, email bool
	for _, s := range strings.Fields(granted) {
		switch s {
		case "openid", "profile", "https://www.googleapis.com/auth/userinfo.profile":
			identity = true
		case "email", "https://www.googleapis.com/auth/userinfo.email":
			email = true
		}
	}
	switch {
	case !identity:
		return fmt.Errorf("%w: identity scope missing from %q", ErrMissingScope, granted)
	case !email:
		return fmt.Errorf("%w: email scope missing from %q", ErrMissingScope, granted)
	}
	return nil
}

func newState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
