package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/payrecord/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keyCreatePayment = "payrecord:create:%s"

type bucket interface {
	Allow(ctx context.Context, key string, rate float64, burst int) (*RateLimitResult, error)
}

// CreateLimiter throttles payment creation per client. A nil limiter allows everything.
type CreateLimiter struct {
	bucket  bucket
	runtime *config.RuntimeConfigHolder
}

type Params struct {
	fx.In

	Lc      fx.Lifecycle
	Cfg     config.Config
	Runtime *config.RuntimeConfigHolder
	Log     *zap.Logger
}

func NewCreateLimiter(p Params) (*CreateLimiter, error) {
	limitCfg := p.Cfg.RateLimit
	log := p.Log.Named("ratelimit")
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		log.Warn("rate limiting enabled without redis address, create requests are not limited")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				log.Warn("redis unreachable at startup", zap.String("addr", addr), zap.Error(err))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	return newCreateLimiter(NewTokenBucket(client), p.Runtime), nil
}

func newCreateLimiter(b bucket, runtime *config.RuntimeConfigHolder) *CreateLimiter {
	return &CreateLimiter{bucket: b, runtime: runtime}
}

func (l *CreateLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// Allow consumes one create token for clientKey using the current runtime policy.
func (l *CreateLimiter) Allow(ctx context.Context, clientKey string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	policy := l.runtime.Get().CreateRateLimit
	key := fmt.Sprintf(keyCreatePayment, strings.TrimSpace(clientKey))
	return l.bucket.Allow(ctx, key, policy.Rate, policy.Burst)
}
