package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	calldetaildomain "github.com/railzwaylabs/mediation/internal/calldetail/domain"
	"gorm.io/gorm"
)

const insertBatchSize = 200

type repository struct {
	db   *gorm.DB
	node *snowflake.Node
}

func NewRepository(db *gorm.DB, node *snowflake.Node) calldetaildomain.Repository {
	return &repository{db: db, node: node}
}

// Insert stores details in one transaction, assigning ids and creation times
// to rows that do not have them yet.
func (r *repository) Insert(ctx context.Context, details []calldetaildomain.CallDetail) error {
	if len(details) == 0 {
		return nil
	}

	now := time.Now().UTC()
	for i := range details {
		if details[i].ID == 0 {
			details[i].ID = r.node.Generate()
		}
		if details[i].CreatedAt.IsZero() {
			details[i].CreatedAt = now
		}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(details, insertBatchSize).Error
	})
}

func (r *repository) FindByCallID(ctx context.Context, callID string) (*calldetaildomain.CallDetail, error) {
	var cd calldetaildomain.CallDetail
	err := r.db.WithContext(ctx).
		Where("call_id = ?", callID).
		Order("id DESC").
		First(&cd).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cd, nil
}

func (r *repository) CountByBAN(ctx context.Context, ban string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&calldetaildomain.CallDetail{}).
		Where("ban = ?", ban).
		Count(&count).Error
	return count, err
}
