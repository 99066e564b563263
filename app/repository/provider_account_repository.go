package repository

import (
	"context"

	"github.com/ManuelReschke/TokenFox/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type providerAccountRepository struct {
	db *gorm.DB
}

func NewProviderAccountRepository(db *gorm.DB) ProviderAccountRepository {
	return &providerAccountRepository{db: db}
}

func (r *providerAccountRepository) GetByProviderUserID(ctx context.Context, provider, providerUserID string) (*models.ProviderAccount, error) {
	var pa models.ProviderAccount
	err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_user_id = ?", provider, providerUserID).
		First(&pa).Error
	if err != nil {
		return nil, err
	}
	return &pa, nil
}

// GetByUserAndProvider uses a locking read so that, inside a transaction, it
// also finds rows committed after the transaction's snapshot was taken.
func (r *providerAccountRepository) GetByUserAndProvider(ctx context.Context, userID uint, provider string) (*models.ProviderAccount, error) {
	var pa models.ProviderAccount
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "SHARE"}).
		Where("user_id = ? AND provider = ?", userID, provider).
		First(&pa).Error
	if err != nil {
		return nil, err
	}
	return &pa, nil
}

func (r *providerAccountRepository) CreateIfAbsent(ctx context.Context, account *models.ProviderAccount) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(account)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *providerAccountRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProviderAccount{}).Count(&count).Error
	return count, err
}
