package repository

import (
	"context"
	"errors"

	"github.com/ManuelReschke/TokenFox/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) SaveTokens(ctx context.Context, providerAccountID uint, tokens models.Tokens) (*models.TokenRecord, error) {
	db := r.db.WithContext(ctx)
	record := &models.TokenRecord{
		ProviderAccountID: providerAccountID,
		AccessToken:       tokens.AccessToken,
		RefreshToken:      tokens.RefreshToken,
		ExpiresAt:         tokens.ExpiresAt,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider_account_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"access_token",
			"refresh_token",
			"expires_at",
			"updated_at",
		}),
	}).Create(record).Error; err != nil {
		return nil, err
	}

	// Re-read: the primary key reported back by an upsert is not reliable
	// across dialects.
	var stored models.TokenRecord
	if err := db.Where("provider_account_id = ?", providerAccountID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *tokenRepository) GetTokens(ctx context.Context, userID uint, provider string) (*models.TokenRecord, error) {
	var record models.TokenRecord
	err := r.db.WithContext(ctx).
		Select("token_records.*").
		Joins("JOIN provider_accounts ON provider_accounts.id = token_records.provider_account_id").
		Where("provider_accounts.user_id = ? AND provider_accounts.provider = ?", userID, provider).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *tokenRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TokenRecord{}).Count(&count).Error
	return count, err
}
