package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/payrecord/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBucket struct {
	key   string
	rate  float64
	burst int
}

func (b *fakeBucket) Allow(_ context.Context, key string, rate float64, burst int) (*RateLimitResult, error) {
	b.key, b.rate, b.burst = key, rate, burst
	return &RateLimitResult{Allowed: true, Limit: burst, Remaining: burst - 1}, nil
}

func TestNilCreateLimiterAllows(t *testing.T) {
	var l *CreateLimiter
	assert.False(t, l.Enabled())

	res, err := l.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestCreateLimiterUsesRuntimePolicy(t *testing.T) {
	cfg := config.Config{
		RuntimeConfigPaths: []string{t.TempDir()},
		RateLimit:          config.RateLimitConfig{CreateRate: 3, CreateBurst: 7},
	}
	holder, err := config.NewRuntimeConfigHolder(cfg)
	require.NoError(t, err)

	b := &fakeBucket{}
	l := newCreateLimiter(b, holder)
	require.True(t, l.Enabled())

	_, err = l.Allow(context.Background(), " 10.0.0.1 ")
	require.NoError(t, err)
	assert.Equal(t, "payrecord:create:10.0.0.1", b.key)
	assert.Equal(t, 3.0, b.rate)
	assert.Equal(t, 7, b.burst)
}

func TestTokenBucketRejectsBadInput(t *testing.T) {
	var tb *TokenBucket
	_, err := tb.Allow(context.Background(), "k", 1, 1)
	require.Error(t, err)
	assert.Nil(t, NewTokenBucket(nil))
}

func TestNewResultComputesRetryAfter(t *testing.T) {
	res := newResult([]interface{}{int64(0), int64(0), int64(1_700_000_000_000)}, 2, 5)
	assert.False(t, res.Allowed)
	assert.Equal(t, 5, res.Limit)
	assert.Equal(t, 500*time.Millisecond, res.RetryAfter)

	res = newResult([]interface{}{int64(1), "3", int64(1_700_000_000_000)}, 2, 5)
	assert.True(t, res.Allowed)
	assert.Equal(t, 3, res.Remaining)
	assert.Zero(t, res.RetryAfter)
}

func TestDefaultBucketTTL(t *testing.T) {
	assert.Equal(t, 10*time.Second, defaultBucketTTL(2, 10))
	assert.Equal(t, time.Second, defaultBucketTTL(100, 1))
	assert.Equal(t, time.Second, defaultBucketTTL(0, 0))
}
