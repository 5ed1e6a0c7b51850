package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	calltypedomain "github.com/railzwaylabs/mediation/internal/calltype/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultCacheTTL = 10 * time.Minute

type cachedRepository struct {
	redis *redis.Client
	inner calltypedomain.Repository
	ttl   time.Duration
	log   *zap.Logger
}

// NewCachedRepository puts a redis read-through cache in front of inner.
// Misses are not cached so a newly provisioned call type is visible at once.
func NewCachedRepository(client *redis.Client, inner calltypedomain.Repository, ttl time.Duration, log *zap.Logger) calltypedomain.Repository {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &cachedRepository{
		redis: client,
		inner: inner,
		ttl:   ttl,
		log:   log.Named("calltype.cache"),
	}
}

func cacheKey(code, spid int) string {
	return fmt.Sprintf("calltype:%d:%d", spid, code)
}

func (r *cachedRepository) FindByCode(ctx context.Context, code, spid int) (*calltypedomain.CallType, error) {
	key := cacheKey(code, spid)

	raw, err := r.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var ct calltypedomain.CallType
		if err := json.Unmarshal(raw, &ct); err == nil {
			return &ct, nil
		}
		r.log.Warn("discarding undecodable call type cache entry", zap.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		// Fail open to the database on redis errors.
		r.log.Warn("call type cache read failed", zap.String("key", key), zap.Error(err))
	}

	ct, err := r.inner.FindByCode(ctx, code, spid)
	if err != nil || ct == nil {
		return ct, err
	}

	payload, err := json.Marshal(ct)
	if err != nil {
		return ct, nil
	}
	if err := r.redis.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		r.log.Warn("call type cache write failed", zap.String("key", key), zap.Error(err))
	}
	return ct, nil
}
