package repository

import (
	"context"

	calltypedomain "github.com/railzwaylabs/mediation/internal/calltype/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) calltypedomain.Repository {
	return &repository{db: db}
}

func (r *repository) FindByCode(ctx context.Context, code, spid int) (*calltypedomain.CallType, error) {
	var rows []calltypedomain.CallType
	err := r.db.WithContext(ctx).Raw(
		`SELECT code, spid, description, gl_code, created_at
		 FROM call_types
		 WHERE code = ? AND spid = ?
		 LIMIT 1`,
		code,
		spid,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
