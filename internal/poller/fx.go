package poller

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// runOnStart ties the inbox watch loop to the application lifecycle.
func runOnStart(lc fx.Lifecycle, p *Poller, log *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				if err := p.Run(ctx); err != nil {
					log.Error("poller stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

var Module = fx.Module("poller",
	fx.Provide(New),
)

// RunModule starts the watch loop with the application.
var RunModule = fx.Module("poller.run",
	fx.Invoke(runOnStart),
)
