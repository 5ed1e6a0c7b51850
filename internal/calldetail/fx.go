package calldetail

import (
	"github.com/railzwaylabs/mediation/internal/calldetail/domain"
	"github.com/railzwaylabs/mediation/internal/calldetail/errorlog"
	"github.com/railzwaylabs/mediation/internal/calldetail/repository"
	"github.com/railzwaylabs/mediation/internal/calldetail/service"
	"go.uber.org/fx"
)

var Module = fx.Module("calldetail.service",
	errorlog.Module,
	fx.Provide(
		func(r *errorlog.Reporter) service.ErrorReporter { return r },
		repository.NewRepository,
		service.NewService,
		func(s *service.Service) domain.Creator { return s },
	),
)
