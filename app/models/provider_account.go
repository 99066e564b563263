package models

import "time"

// ProviderAccount links a user to an account at an external identity provider.
// It is written once at first login with that provider and never mutated.
type ProviderAccount struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index:ux_provider_accounts_user_provider,unique,priority:1" json:"user_id"`
	Provider       string    `gorm:"type:varchar(50);not null;index:ux_provider_accounts_user_provider,unique,priority:2;index:ux_provider_accounts_provider_uid,unique,priority:1" json:"provider"`
	ProviderUserID string    `gorm:"type:varchar(191);not null;index:ux_provider_accounts_provider_uid,unique,priority:2" json:"provider_user_id"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
