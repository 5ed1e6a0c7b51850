package clock

import (
	"context"
	"time"
)

type key string

var processingTimeKey key = "processing_time"

// WithProcessingTime pins the processing time for everything run under ctx,
// used when replaying archived ER files with their original posting date.
func WithProcessingTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, processingTimeKey, t.UTC())
}

// FromContext returns the pinned processing time, if present.
func FromContext(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(processingTimeKey).(time.Time)
	return t, ok
}
