package session

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/redis"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/TokenFox/internal/pkg/config"
	"github.com/ManuelReschke/TokenFox/internal/pkg/oauth"
	"github.com/ManuelReschke/TokenFox/internal/pkg/usercontext"
)

// Keys of the pending authorization. They live only between the redirect to
// the provider and the callback.
const (
	keyOAuthProvider = "oauth_provider"
	keyOAuthState    = "oauth_state"
	keyOAuthSession  = "oauth_session"
)

// Store wraps the fiber session store with the values the login flow keeps.
type Store struct {
	*session.Store
}

// NewStore builds the session store. With redis storage the connection
// settings are taken from the cache client; sessions use database 1 so they
// never collide with cache keys.
func NewStore(cfg *config.Config, cacheClient *goredis.Client) (*Store, error) {
	sc := session.Config{
		Expiration:     cfg.Session.TTL,
		KeyLookup:      "cookie:session_id",
		CookieHTTPOnly: true,
		CookieSecure:   !cfg.Debug,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
	}

	if cfg.Session.Storage == config.SessionRedis {
		if cacheClient == nil {
			return nil, errors.New("redis session storage requires a cache client")
		}
		opts := cacheClient.Options()
		host, portStr, err := net.SplitHostPort(opts.Addr)
		if err != nil {
			return nil, fmt.Errorf("cache address %q: %w", opts.Addr, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("cache port %q: %w", portStr, err)
		}
		sc.Storage = redis.New(redis.Config{
			Host:     host,
			Port:     port,
			Password: opts.Password,
			Database: 1,
			Reset:    false,
		})
	}

	return &Store{Store: session.New(sc)}, nil
}

// SavePending stores a started authorization in the caller's session,
// replacing any earlier one.
func (s *Store) SavePending(c *fiber.Ctx, p *oauth.Pending) error {
	sess, err := s.Get(c)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	sess.Set(keyOAuthProvider, p.Provider)
	sess.Set(keyOAuthState, p.State)
	sess.Set(keyOAuthSession, p.Session)
	return sess.Save()
}

// TakePending removes the pending authorization from the session and
// returns it. A state is therefore accepted at most once. It returns nil
// when no authorization is in progress.
func (s *Store) TakePending(c *fiber.Ctx) (*oauth.Pending, error) {
	sess, err := s.Get(c)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	provider, _ := sess.Get(keyOAuthProvider).(string)
	state, _ := sess.Get(keyOAuthState).(string)
	data, _ := sess.Get(keyOAuthSession).(string)
	if state == "" {
		return nil, nil
	}

	sess.Delete(keyOAuthProvider)
	sess.Delete(keyOAuthState)
	sess.Delete(keyOAuthSession)
	if err := sess.Save(); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return &oauth.Pending{Provider: provider, State: state, Session: data}, nil
}

// Login binds the session to userID. The session id is rotated so an id
// planted before login cannot be reused afterwards.
func (s *Store) Login(c *fiber.Ctx, userID uint, username string) error {
	sess, err := s.Get(c)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	if err := sess.Regenerate(); err != nil {
		return fmt.Errorf("failed to regenerate session: %w", err)
	}
	sess.Set(usercontext.KeyUserID, userID)
	sess.Set(usercontext.KeyUsername, username)
	return sess.Save()
}

// Logout destroys the session entirely.
func (s *Store) Logout(c *fiber.Ctx) error {
	sess, err := s.Get(c)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	return sess.Destroy()
}

// User returns the logged-in user of the session, if any.
func (s *Store) User(c *fiber.Ctx) (uint, string, bool) {
	sess, err := s.Get(c)
	if err != nil {
		return 0, "", false
	}
	userID, ok := sess.Get(usercontext.KeyUserID).(uint)
	if !ok || userID == 0 {
		return 0, "", false
	}
	username, _ := sess.Get(usercontext.KeyUsername).(string)
	return userID, username, true
}
