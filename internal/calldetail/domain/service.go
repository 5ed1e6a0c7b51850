package domain

import (
	"context"
)

// Creator builds call details from IPCG input, one record or one ER batch at a time.
type Creator interface {
	CreateCallDetail(ctx context.Context, rec RawUsageRecord, opts ...CreateOption) (*CallDetail, error)
	CreateCallDetails(ctx context.Context, batch Batch) ([]CallDetail, error)
}

// CreateOptions tune a single CreateCallDetail call.
type CreateOptions struct {
	LogError *bool
}

type CreateOption func(*CreateOptions)

// WithErrorLog forces the account error log on or off for one call,
// overriding the configured default.
func WithErrorLog(enabled bool) CreateOption {
	return func(o *CreateOptions) {
		o.LogError = &enabled
	}
}

// Repository persists built call details for rating.
type Repository interface {
	Insert(ctx context.Context, details []CallDetail) error
	FindByCallID(ctx context.Context, callID string) (*CallDetail, error)
	CountByBAN(ctx context.Context, ban string) (int64, error)
}
