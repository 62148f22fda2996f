package service

import (
	"context"
	"errors"
	"time"

	"cwt/backend-api/internal/model"
	"cwt/backend-api/internal/verification"

	"gorm.io/gorm"
)

// Accounts adapts the users table to the ledger's AccountStore contract
type Accounts struct {
	DB *gorm.DB
}

func NewAccounts(db *gorm.DB) *Accounts {
	return &Accounts{DB: db}
}

func (a *Accounts) FindByOwnerID(ctx context.Context, ownerID string) (*verification.Account, error) {
	var user model.User

	err := a.DB.WithContext(ctx).
		Where("uid = ?", ownerID).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, verification.ErrNoAccount
		}

		return nil, err
	}

	return &verification.Account{
		OwnerID:       user.UID,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
	}, nil
}

func (a *Accounts) MarkVerified(ctx context.Context, ownerID string) error {
	r := a.DB.WithContext(ctx).
		Model(model.User{}).
		Where("uid = ?", ownerID).
		Updates(map[string]any{
			"email_verified": true,
			"updated_at":     time.Now(),
		})
	if r.Error != nil {
		return r.Error
	}

	if r.RowsAffected == 0 {
		return verification.ErrNoAccount
	}

	return nil
}
