package repository

import (
	"context"

	taxdomain "github.com/railzwaylabs/mediation/internal/tax/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) taxdomain.Repository {
	return &repository{db: db}
}

func (r *repository) FindDataTaxAuthority(ctx context.Context, spid int) (int, error) {
	var id int
	err := r.db.WithContext(ctx).Raw(
		`SELECT COALESCE(MAX(data_tax_authority_id), 0)
		 FROM spid_tax_authorities
		 WHERE spid = ?`,
		spid,
	).Scan(&id).Error
	return id, err
}
