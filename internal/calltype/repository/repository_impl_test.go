package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	calltypedomain "github.com/railzwaylabs/mediation/internal/calltype/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type innerMock struct {
	mock.Mock
}

func (m *innerMock) FindByCode(ctx context.Context, code, spid int) (*calltypedomain.CallType, error) {
	args := m.Called(ctx, code, spid)
	res := args.Get(0)
	if res == nil {
		return nil, args.Error(1)
	}
	return res.(*calltypedomain.CallType), args.Error(1)
}

func TestFindByCode(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&calltypedomain.CallType{}))

	require.NoError(t, db.Create(&[]calltypedomain.CallType{
		{Code: 12, Spid: 1, GLCode: "4000", Description: "GPRS", CreatedAt: time.Now().UTC()},
		{Code: 12, Spid: 2, GLCode: "4100", Description: "GPRS roaming", CreatedAt: time.Now().UTC()},
	}).Error)

	repo := NewRepository(db)
	ctx := context.Background()

	ct, err := repo.FindByCode(ctx, 12, 2)
	require.NoError(t, err)
	require.NotNil(t, ct)
	assert.Equal(t, "4100", ct.GLCode)

	// Same code under a provider without the entry.
	missing, err := repo.FindByCode(ctx, 12, 3)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCachedRepository(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	ctx := context.Background()

	t.Run("read through then hit", func(t *testing.T) {
		inner := new(innerMock)
		inner.On("FindByCode", mock.Anything, 5, 1).
			Return(&calltypedomain.CallType{Code: 5, Spid: 1, GLCode: "7000"}, nil).Once()

		repo := NewCachedRepository(rdb, inner, time.Minute, zap.NewNop())

		first, err := repo.FindByCode(ctx, 5, 1)
		require.NoError(t, err)
		assert.Equal(t, "7000", first.GLCode)
		assert.True(t, s.Exists("calltype:1:5"))

		second, err := repo.FindByCode(ctx, 5, 1)
		require.NoError(t, err)
		assert.Equal(t, "7000", second.GLCode)

		inner.AssertNumberOfCalls(t, "FindByCode", 1)
	})

	t.Run("miss is not cached", func(t *testing.T) {
		inner := new(innerMock)
		inner.On("FindByCode", mock.Anything, 9, 1).Return(nil, nil).Twice()

		repo := NewCachedRepository(rdb, inner, time.Minute, zap.NewNop())

		for i := 0; i < 2; i++ {
			ct, err := repo.FindByCode(ctx, 9, 1)
			require.NoError(t, err)
			assert.Nil(t, ct)
		}
		assert.False(t, s.Exists("calltype:1:9"))
		inner.AssertExpectations(t)
	})

	t.Run("store error propagates", func(t *testing.T) {
		inner := new(innerMock)
		inner.On("FindByCode", mock.Anything, 11, 1).Return(nil, errors.New("connection reset"))

		repo := NewCachedRepository(rdb, inner, time.Minute, zap.NewNop())

		_, err := repo.FindByCode(ctx, 11, 1)
		assert.EqualError(t, err, "connection reset")
	})

	t.Run("redis down falls back to store", func(t *testing.T) {
		down := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
		inner := new(innerMock)
		inner.On("FindByCode", mock.Anything, 5, 2).
			Return(&calltypedomain.CallType{Code: 5, Spid: 2, GLCode: "7100"}, nil)

		repo := NewCachedRepository(down, inner, time.Minute, zap.NewNop())

		ct, err := repo.FindByCode(ctx, 5, 2)
		require.NoError(t, err)
		assert.Equal(t, "7100", ct.GLCode)
	})
}
