package repository

import (
	"context"

	subscriberdomain "github.com/railzwaylabs/mediation/internal/subscriber/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) subscriberdomain.Repository {
	return &repository{db: db}
}

func (r *repository) FindSubscriberByID(ctx context.Context, id string) (*subscriberdomain.Subscriber, error) {
	var sub subscriberdomain.Subscriber
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, ban, msisdn, created_at
		 FROM subscribers
		 WHERE id = ?`,
		id,
	).Scan(&sub).Error
	if err != nil {
		return nil, err
	}
	if sub.ID == "" {
		return nil, nil
	}
	return &sub, nil
}

func (r *repository) FindAccountByBAN(ctx context.Context, ban string) (*subscriberdomain.Account, error) {
	var acct subscriberdomain.Account
	err := r.db.WithContext(ctx).Model(&subscriberdomain.Account{}).
		Where("ban = ?", ban).
		First(&acct).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &acct, nil
}
