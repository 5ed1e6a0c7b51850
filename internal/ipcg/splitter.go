// Package ipcg decodes IPCG event records (ER501) into raw usage records.
package ipcg

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	calldetaildomain "github.com/railzwaylabs/mediation/internal/calldetail/domain"
)

// ER501 is the IPCG data-session event record id.
const ER501 = 501

// TranDateLayout is the IPCG transaction timestamp format.
const TranDateLayout = "2006/01/02 15:04:05"

// Positions within one ER501 session group.
const (
	fieldRecordID = iota
	fieldTranDate
	fieldSubscriberID
	fieldMSISDN
	fieldCallType
	fieldUnitType
	fieldUsage
	fieldCharge
	fieldComponentCharge1
	fieldComponentCharge2
	fieldComponentCharge3
	fieldGLCode
	fieldBillingOption
	fieldLocationCountry
	fieldLocationOperator
	fieldAPN
	fieldSecondaryBalanceIndicator
	fieldSecondaryBalanceAmount
	fieldRateRuleID

	// FieldsPerRecord is the width of one session group.
	FieldsPerRecord
)

var (
	ErrRecordFiltered  = errors.New("the ER is filtered out")
	ErrMalformedRecord = errors.New("malformed ER501 record")
)

type Splitter struct {
	loc *time.Location
}

// NewSplitter returns an ER501 splitter interpreting transaction dates in loc
// (UTC when nil).
func NewSplitter(loc *time.Location) *Splitter {
	if loc == nil {
		loc = time.UTC
	}
	return &Splitter{loc: loc}
}

var _ calldetaildomain.Splitter = (*Splitter)(nil)

// SplitRawBatch decodes fields[startIndex:] as consecutive groups of
// FieldsPerRecord session fields. Any other ER id is filtered out. The line has
// already been split on delimiter by the caller.
func (s *Splitter) SplitRawBatch(fields []string, startIndex int, delimiter rune, erid int) ([]calldetaildomain.RawUsageRecord, error) {
	if erid != ER501 {
		return nil, fmt.Errorf("%w: erid %d", ErrRecordFiltered, erid)
	}
	if startIndex < 0 || startIndex >= len(fields) {
		return nil, fmt.Errorf("%w: start index %d outside %d fields", ErrMalformedRecord, startIndex, len(fields))
	}

	body := fields[startIndex:]
	if len(body)%FieldsPerRecord != 0 {
		return nil, fmt.Errorf("%w: %d fields after index %d is not a multiple of %d (delimiter %q)",
			ErrMalformedRecord, len(body), startIndex, FieldsPerRecord, delimiter)
	}

	records := make([]calldetaildomain.RawUsageRecord, 0, len(body)/FieldsPerRecord)
	for off := 0; off < len(body); off += FieldsPerRecord {
		rec, err := s.decode(body[off : off+FieldsPerRecord])
		if err != nil {
			return nil, fmt.Errorf("%w: session %d: %v", ErrMalformedRecord, off/FieldsPerRecord, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Splitter) decode(f []string) (calldetaildomain.RawUsageRecord, error) {
	d := decoder{fields: f}

	rec := calldetaildomain.RawUsageRecord{
		RecordID:      d.readInt(fieldRecordID, "record id"),
		TranDate:      d.readTime(fieldTranDate, "tran date", s.loc),
		SubscriberID:  d.str(fieldSubscriberID),
		ChargedMSISDN: d.str(fieldMSISDN),
		CallType:      int(d.readInt(fieldCallType, "call type")),
		Usage:         d.readInt(fieldUsage, "usage"),
		Charge:        d.readInt(fieldCharge, "charge"),

		ComponentCharge1: d.readOptInt(fieldComponentCharge1, "component charge 1"),
		ComponentCharge2: d.readOptInt(fieldComponentCharge2, "component charge 2"),
		ComponentCharge3: d.readOptInt(fieldComponentCharge3, "component charge 3"),

		GLCode:           d.str(fieldGLCode),
		BillingOption:    d.str(fieldBillingOption),
		LocationCountry:  d.str(fieldLocationCountry),
		LocationOperator: d.str(fieldLocationOperator),
		APN:              d.str(fieldAPN),

		SecondaryBalanceIndicator:     d.readBool(fieldSecondaryBalanceIndicator, "secondary balance indicator"),
		SecondaryBalanceChargedAmount: d.readOptInt(fieldSecondaryBalanceAmount, "secondary balance amount"),

		RateRuleID: d.str(fieldRateRuleID),
	}

	unit, err := calldetaildomain.ParseUnitType(f[fieldUnitType])
	if err != nil && d.err == nil {
		d.err = err
	}
	rec.UnitType = unit

	if d.err == nil && rec.SubscriberID == "" {
		d.err = errors.New("subscriber id is empty")
	}
	return rec, d.err
}

// decoder keeps the first conversion error so a group can be decoded in one
// expression.
type decoder struct {
	fields []string
	err    error
}

func (d *decoder) str(i int) string {
	return strings.TrimSpace(d.fields[i])
}

func (d *decoder) fail(name, value string, err error) {
	if d.err == nil {
		d.err = fmt.Errorf("%s %q: %w", name, value, err)
	}
}

func (d *decoder) readInt(i int, name string) int64 {
	v := d.str(i)
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		d.fail(name, v, err)
	}
	return n
}

func (d *decoder) readOptInt(i int, name string) int64 {
	if d.str(i) == "" {
		return 0
	}
	return d.readInt(i, name)
}

func (d *decoder) readBool(i int, name string) bool {
	v := d.str(i)
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		d.fail(name, v, err)
	}
	return b
}

func (d *decoder) readTime(i int, name string, loc *time.Location) time.Time {
	v := d.str(i)
	t, err := time.ParseInLocation(TranDateLayout, v, loc)
	if err != nil {
		d.fail(name, v, err)
	}
	return t
}
