package service

import (
	calldetaildomain "github.com/railzwaylabs/mediation/internal/calldetail/domain"
)

type usageFields struct {
	duration  *calldetaildomain.Duration
	dataUsage *int64
}

// normalizeUsage stores time usage as a raw seconds count in the duration
// seconds slot; it is never carried into minutes or hours.
func normalizeUsage(unit calldetaildomain.UnitType, usage int64) usageFields {
	if unit.IsTime() {
		return usageFields{
			duration: &calldetaildomain.Duration{Seconds: int(usage)},
		}
	}
	v := usage
	return usageFields{dataUsage: &v}
}

// normalizeCharge converts the IPCG charge from tenths to billing minor units,
// rounding half up towards positive infinity, so -105 becomes -10.
func normalizeCharge(raw int64) int64 {
	q, r := raw/10, raw%10
	if r < 0 {
		q--
		r += 10
	}
	if r >= 5 {
		q++
	}
	return q
}
