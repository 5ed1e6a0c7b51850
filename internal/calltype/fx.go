package calltype

import (
	"github.com/railzwaylabs/mediation/internal/calltype/domain"
	"github.com/railzwaylabs/mediation/internal/calltype/repository"
	"github.com/railzwaylabs/mediation/internal/config"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RepositoryParam struct {
	fx.In

	DB     *gorm.DB
	Config config.Config
	Log    *zap.Logger
	Redis  *goredis.Client `optional:"true"`
}

// ProvideRepository wraps the database repository in the redis cache when a
// redis client is available.
func ProvideRepository(p RepositoryParam) domain.Repository {
	repo := repository.NewRepository(p.DB)
	if p.Redis == nil {
		return repo
	}
	return repository.NewCachedRepository(p.Redis, repo, p.Config.Redis.CallTypeTTL, p.Log)
}

var Module = fx.Module("calltype.repository",
	fx.Provide(ProvideRepository),
)
