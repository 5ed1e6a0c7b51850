package domain

import "context"

// TaxAuthority maps a service provider to the tax authority applied to data usage.
type TaxAuthority struct {
	Spid               int `gorm:"primaryKey;autoIncrement:false"`
	DataTaxAuthorityID int `gorm:"not null"`
}

// TableName sets the database table name.
func (TaxAuthority) TableName() string { return "spid_tax_authorities" }

type Repository interface {
	// FindDataTaxAuthority returns 0 when the provider has no data tax authority.
	FindDataTaxAuthority(ctx context.Context, spid int) (int, error)
}
