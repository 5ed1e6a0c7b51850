// Package domain contains the IPCG input record and the normalized call detail
// handed to rating.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// UnitType is the rate unit a usage quantity is expressed in.
type UnitType string

const (
	UnitTypeSeconds UnitType = "SEC"
	UnitTypeMinutes UnitType = "MIN"
	UnitTypeData    UnitType = "DATA"
)

// IsTime reports whether usage of this unit is a duration.
func (u UnitType) IsTime() bool {
	return u == UnitTypeSeconds || u == UnitTypeMinutes
}

// ParseUnitType accepts the symbolic names and the numeric codes emitted by IPCG.
func ParseUnitType(value string) (UnitType, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "SEC", "0":
		return UnitTypeSeconds, nil
	case "MIN", "1":
		return UnitTypeMinutes, nil
	case "DATA", "KB", "2":
		return UnitTypeData, nil
	default:
		return "", fmt.Errorf("unknown unit type %q", value)
	}
}

type TeleserviceType string

const TeleserviceTypeData TeleserviceType = "DATA"

// RawUsageRecord is one IPCG data-session event as delivered upstream.
type RawUsageRecord struct {
	RecordID      int64     `json:"record_id"`
	TranDate      time.Time `json:"tran_date" binding:"required"`
	SubscriberID  string    `json:"subscriber_id" binding:"required"`
	ChargedMSISDN string    `json:"charged_msisdn"`
	CallType      int       `json:"call_type"`
	UnitType      UnitType  `json:"unit_type" binding:"required,oneof=SEC MIN DATA"`
	Usage         int64     `json:"usage"`

	// Charge is in tenths of the billing minor unit.
	Charge           int64 `json:"charge"`
	ComponentCharge1 int64 `json:"component_charge_1"`
	ComponentCharge2 int64 `json:"component_charge_2"`
	ComponentCharge3 int64 `json:"component_charge_3"`

	GLCode           string `json:"gl_code"`
	BillingOption    string `json:"billing_option"`
	LocationCountry  string `json:"location_country"`
	LocationOperator string `json:"location_operator"`
	APN              string `json:"apn"`

	SecondaryBalanceIndicator     bool  `json:"secondary_balance_indicator"`
	SecondaryBalanceChargedAmount int64 `json:"secondary_balance_charged_amount"`

	RateRuleID string `json:"rate_rule_id"`
}

// Duration mirrors the hours/minutes/seconds/fraction layout of the
// call_details duration column.
type Duration struct {
	Hours    int `json:"hours"`
	Minutes  int `json:"minutes"`
	Seconds  int `json:"seconds"`
	Fraction int `json:"fraction"`
}

// CallDetail is the normalized record consumed by rating and invoicing.
type CallDetail struct {
	ID            snowflake.ID `json:"id" gorm:"primaryKey"`
	BAN           string       `json:"ban" gorm:"type:text;not null;index"`
	SubscriberID  string       `json:"subscriber_id" gorm:"type:text;not null;index"`
	TranDate      time.Time    `json:"tran_date" gorm:"not null"`
	CallType      int          `json:"call_type" gorm:"not null"`
	PostedDate    time.Time    `json:"posted_date" gorm:"not null"`
	ChargedMSISDN string       `json:"charged_msisdn" gorm:"type:text"`

	// Exactly one of Duration and DataUsage is set, chosen by UnitType.
	Duration  *Duration `json:"duration,omitempty" gorm:"serializer:json;type:text"`
	DataUsage *int64    `json:"data_usage,omitempty"`

	VariableRateUnit UnitType `json:"variable_rate_unit" gorm:"type:text;not null"`
	Charge           int64    `json:"charge" gorm:"not null"`
	Spid             int      `json:"spid" gorm:"not null"`
	TaxAuthority1    int      `json:"tax_authority_1"`

	GLCode           string `json:"gl_code" gorm:"column:gl_code;type:text;not null"`
	ComponentGLCode1 string `json:"component_gl_code_1,omitempty" gorm:"column:component_gl_code_1;type:text"`
	ComponentGLCode2 string `json:"component_gl_code_2,omitempty" gorm:"column:component_gl_code_2;type:text"`
	ComponentGLCode3 string `json:"component_gl_code_3,omitempty" gorm:"column:component_gl_code_3;type:text"`

	ComponentCharge1 int64 `json:"component_charge_1"`
	ComponentCharge2 int64 `json:"component_charge_2"`
	ComponentCharge3 int64 `json:"component_charge_3"`

	BillingOption    string          `json:"billing_option" gorm:"type:text"`
	CallID           string          `json:"call_id" gorm:"type:text;not null;index"`
	LocationCountry  string          `json:"location_country" gorm:"type:text"`
	LocationOperator string          `json:"location_operator" gorm:"type:text"`
	APN              string          `json:"apn" gorm:"column:apn;type:text"`
	TeleserviceType  TeleserviceType `json:"teleservice_type" gorm:"type:text;not null"`
	HomeProv         string          `json:"home_prov" gorm:"type:text"`

	SecondaryBalanceIndicator     bool  `json:"secondary_balance_indicator"`
	SecondaryBalanceChargedAmount int64 `json:"secondary_balance_charged_amount"`

	RatingRule string    `json:"rating_rule" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at" gorm:"not null"`
}

// TableName sets the database table name.
func (CallDetail) TableName() string { return "call_details" }

// Batch is one raw ER line plus the poller metadata needed to split it.
type Batch struct {
	Record     string `json:"record" binding:"required"`
	StartIndex int    `json:"start_index"`
	ERID       int    `json:"erid" binding:"required"`
}
