package models

import "time"

// TokenRecord holds the latest credentials issued for a provider account.
// There is at most one per account; every successful login replaces it.
type TokenRecord struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	ProviderAccountID uint       `gorm:"not null;uniqueIndex" json:"provider_account_id"`
	AccessToken       string     `gorm:"type:text;not null" json:"-"`
	RefreshToken      *string    `gorm:"type:text" json:"-"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// HasRefreshToken reports whether the provider granted offline access.
func (t *TokenRecord) HasRefreshToken() bool {
	return t.RefreshToken != nil && *t.RefreshToken != ""
}

// Tokens is what a completed authorization hands to the credential store.
type Tokens struct {
	AccessToken  string
	RefreshToken *string
	ExpiresAt    *time.Time
}
