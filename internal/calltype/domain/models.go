package domain

import (
	"context"
	"time"
)

// CallType classifies usage for one service provider and carries the GL code
// used when a record has none of its own.
type CallType struct {
	Code        int       `json:"code" gorm:"primaryKey;autoIncrement:false"`
	Spid        int       `json:"spid" gorm:"primaryKey;autoIncrement:false"`
	Description string    `json:"description" gorm:"type:text"`
	GLCode      string    `json:"gl_code" gorm:"column:gl_code;type:text;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null"`
}

// TableName sets the database table name.
func (CallType) TableName() string { return "call_types" }

type Repository interface {
	FindByCode(ctx context.Context, code, spid int) (*CallType, error)
}
