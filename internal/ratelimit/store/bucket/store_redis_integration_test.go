//go:build integration

package bucket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"regsync/pkg/testutil/containers"
)

type RedisBucketStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *RedisBucketStore
	ctx   context.Context
}

func TestRedisBucketStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisBucketStoreSuite))
}

func (s *RedisBucketStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.ctx = context.Background()
}

func (s *RedisBucketStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
	s.store = NewRedisBucketStore(s.redis.Client)
	fixed := time.Date(2024, 3, 1, 10, 0, 5, 0, time.UTC)
	s.store.now = func() time.Time { return fixed }
}

func (s *RedisBucketStoreSuite) TestAllowUpToLimit() {
	for i := range 3 {
		result, err := s.store.Allow(s.ctx, "rl:user:1:read", 3, time.Minute)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(3-(i+1), result.Remaining)
	}

	result, err := s.store.Allow(s.ctx, "rl:user:1:read", 3, time.Minute)
	s.Require().NoError(err)
	s.False(result.Allowed)
	s.Equal(55, result.RetryAfter)
}

func (s *RedisBucketStoreSuite) TestWindowKeyExpires() {
	_, err := s.store.Allow(s.ctx, "rl:user:2:read", 3, time.Minute)
	s.Require().NoError(err)

	keys, err := s.redis.Client.Keys(s.ctx, "regsync:rl:user:2:read:*").Result()
	s.Require().NoError(err)
	s.Require().Len(keys, 1)

	ttl, err := s.redis.Client.PTTL(s.ctx, keys[0]).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, time.Minute)
}

func (s *RedisBucketStoreSuite) TestReset() {
	for range 3 {
		_, err := s.store.Allow(s.ctx, "rl:user:3:read", 3, time.Minute)
		s.Require().NoError(err)
	}

	s.Require().NoError(s.store.Reset(s.ctx, "rl:user:3:read"))

	result, err := s.store.Allow(s.ctx, "rl:user:3:read", 3, time.Minute)
	s.Require().NoError(err)
	s.True(result.Allowed)
}
