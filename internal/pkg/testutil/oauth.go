package testutil

import (
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/markbates/goth"
	"golang.org/x/oauth2"
)

// FakeProvider is an in-process goth.Provider. Authorize "exchanges" any
// non-empty code and FetchUser returns the configured user.
type FakeProvider struct {
	mu           sync.Mutex
	providerName string
	user         goth.User
	authorizeErr error
	fetchErr     error
	delay        time.Duration
	codes        []string
}

func NewFakeProvider(name string) *FakeProvider {
	return &FakeProvider{providerName: name}
}

// SetUser configures what the next exchange returns.
func (p *FakeProvider) SetUser(u goth.User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.user = u
}

func (p *FakeProvider) FailAuthorize(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.authorizeErr = err
}

func (p *FakeProvider) FailFetch(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fetchErr = err
}

// SetDelay makes every code exchange block for d.
func (p *FakeProvider) SetDelay(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.delay = d
}

// Codes lists the authorization codes exchanged so far.
func (p *FakeProvider) Codes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.codes...)
}

func (p *FakeProvider) Name() string        { return p.providerName }
func (p *FakeProvider) SetName(name string) { p.providerName = name }
func (p *FakeProvider) Debug(bool)          {}

func (p *FakeProvider) BeginAuth(state string) (goth.Session, error) {
	q := url.Values{
		"client_id":     {"fake-client"},
		"response_type": {"code"},
		"scope":         {"openid email profile"},
		"state":         {state},
		"access_type":   {"offline"},
		"prompt":        {"consent"},
	}
	return &FakeSession{AuthURL: "https://idp.example.test/authorize?" + q.Encode()}, nil
}

func (p *FakeProvider) UnmarshalSession(data string) (goth.Session, error) {
	s := &FakeSession{}
	err := json.Unmarshal([]byte(data), s)
	return s, err
}

func (p *FakeProvider) FetchUser(session goth.Session) (goth.User, error) {
	s := session.(*FakeSession)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fetchErr != nil {
		return goth.User{}, p.fetchErr
	}
	if s.AccessToken == "" {
		return goth.User{}, errors.New("fake: no access token")
	}
	u := p.user
	u.Provider = p.providerName
	return u, nil
}

func (p *FakeProvider) RefreshToken(string) (*oauth2.Token, error) {
	return nil, errors.New("fake: refresh not supported")
}

func (p *FakeProvider) RefreshTokenAvailable() bool { return false }

// FakeSession is the goth.Session of FakeProvider.
type FakeSession struct {
	AuthURL     string `json:"auth_url"`
	AccessToken string `json:"access_token"`
}

func (s *FakeSession) GetAuthURL() (string, error) {
	if s.AuthURL == "" {
		return "", errors.New("fake: no auth url")
	}
	return s.AuthURL, nil
}

func (s *FakeSession) Marshal() string {
	b, _ := json.Marshal(s)
	return string(b)
}

func (s *FakeSession) Authorize(provider goth.Provider, params goth.Params) (string, error) {
	p := provider.(*FakeProvider)

	p.mu.Lock()
	delay, authErr, user := p.delay, p.authorizeErr, p.user
	p.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if authErr != nil {
		return "", authErr
	}
	code := params.Get("code")
	if code == "" {
		return "", errors.New("fake: missing code")
	}

	p.mu.Lock()
	p.codes = append(p.codes, code)
	p.mu.Unlock()

	s.AccessToken = user.AccessToken
	if s.AccessToken == "" {
		s.AccessToken = "fake-access-" + code
	}
	return s.AccessToken, nil
}
