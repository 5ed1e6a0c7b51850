package subscriber

import (
	"github.com/railzwaylabs/mediation/internal/subscriber/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("subscriber.repository",
	fx.Provide(repository.NewRepository),
)
