package oauth

import (
	"fmt"
	"net/http"

	"github.com/markbates/goth"
	"github.com/markbates/goth/providers/google"
	"github.com/markbates/goth/providers/openidConnect"

	"github.com/ManuelReschke/TokenFox/internal/pkg/config"
)

// Setup builds the configured goth provider and registers it with goth.
// Offline access is always requested so a refresh token is issued, and
// consent is forced so it is issued again on repeat logins.
func Setup(cfg *config.Config) (goth.Provider, error) {
	httpClient := &http.Client{Timeout: cfg.OAuth.Timeout}

	var provider goth.Provider
	switch cfg.OAuth.Provider {
	case config.ProviderGoogle:
		p := google.New(
			cfg.OAuth.ClientID,
			cfg.OAuth.ClientSecret,
			cfg.CallbackURL(config.ProviderGoogle),
			"openid", "email", "profile",
		)
		p.SetAccessType("offline")
		p.SetPrompt("consent")
		p.HTTPClient = httpClient
		provider = p
	case config.ProviderOIDC:
		p, err := openidConnect.New(
			cfg.OAuth.ClientID,
			cfg.OAuth.ClientSecret,
			cfg.CallbackURL(config.ProviderOIDC),
			cfg.OAuth.DiscoveryURL,
			"openid", "email", "profile", "offline_access",
		)
		if err != nil {
			return nil, fmt.Errorf("openid-connect discovery: %w", err)
		}
		p.HTTPClient = httpClient
		provider = p
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.OAuth.Provider)
	}

	goth.UseProviders(provider)
	return provider, nil
}
