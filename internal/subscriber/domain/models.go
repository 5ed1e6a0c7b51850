// Package domain holds the subscriber and account views mediation reads.
package domain

import (
	"context"
	"time"
)

type Subscriber struct {
	ID        string    `gorm:"primaryKey;type:text"`
	BAN       string    `gorm:"column:ban;type:text;index"`
	MSISDN    string    `gorm:"column:msisdn;type:text;index"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName sets the database table name.
func (Subscriber) TableName() string { return "subscribers" }

type Account struct {
	BAN       string    `gorm:"column:ban;primaryKey;type:text"`
	Spid      int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName sets the database table name.
func (Account) TableName() string { return "accounts" }

// Repository looks up subscribers and accounts. Absence is reported as a nil
// result with a nil error.
type Repository interface {
	FindSubscriberByID(ctx context.Context, id string) (*Subscriber, error)
	FindAccountByBAN(ctx context.Context, ban string) (*Account, error)
}
