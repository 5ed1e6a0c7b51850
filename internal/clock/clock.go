package clock

import (
	"context"
	"time"

	"go.uber.org/fx"
)

// Clock supplies the processing time stamped on call details.
type Clock interface {
	Now(ctx context.Context) time.Time
}

var Module = fx.Module("clock",
	fx.Provide(func() Clock { return SystemClock{} }),
)
