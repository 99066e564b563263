package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// User is the local identity. Users are created on first provider login and
// never deleted by the login flow.
type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Username    string     `gorm:"type:varchar(150);not null" json:"username" validate:"required,max=150"`
	Email       string     `gorm:"uniqueIndex;type:varchar(200);not null" json:"email" validate:"required,email,max=200"`
	LastLoginAt *time.Time `gorm:"default:null" json:"last_login_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

// NewUser builds a validated user for a first login. The username falls back
// to the local part of the email when the provider sends no nickname.
func NewUser(username, email string) (*User, error) {
	email = NormalizeEmail(email)
	username = strings.TrimSpace(username)
	if username == "" {
		username = email
		if at := strings.IndexByte(email, '@'); at > 0 {
			username = email[:at]
		}
	}
	if len(username) > 150 {
		username = username[:150]
	}

	u := &User{
		Username: username,
		Email:    email,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// NormalizeEmail lowercases and trims an address so lookups by email match.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
