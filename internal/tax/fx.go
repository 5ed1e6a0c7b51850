package tax

import (
	"github.com/railzwaylabs/mediation/internal/tax/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("tax.repository",
	fx.Provide(repository.NewRepository),
)
