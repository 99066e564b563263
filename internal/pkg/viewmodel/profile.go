package viewmodel

import (
	"time"

	"github.com/ManuelReschke/TokenFox/app/models"
)

// Profile is what the profile page shows. Empty strings render as "none".
type Profile struct {
	Username     string
	Email        string
	Provider     string
	Connected    bool
	AccessToken  string
	RefreshToken string
	ExpiresAt    string
}

// NewProfile builds the page data. record may be nil when the user never
// completed the flow for provider.
func NewProfile(user *models.User, provider string, record *models.TokenRecord) Profile {
	p := Profile{
		Username: user.Username,
		Email:    user.Email,
		Provider: ProviderLabel(provider),
	}
	if record == nil {
		return p
	}

	p.Connected = true
	p.AccessToken = record.AccessToken
	if record.HasRefreshToken() {
		p.RefreshToken = *record.RefreshToken
	}
	if record.ExpiresAt != nil {
		p.ExpiresAt = FormatTime(*record.ExpiresAt)
	}
	return p
}

// FormatTime renders timestamps as RFC 3339 in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
