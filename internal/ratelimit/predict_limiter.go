package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/returnsight/internal/config"
)

const keyPredictClient = "predict:client:%s"

// PredictLimiter throttles the prediction endpoints per client. A nil
// limiter (Redis not configured) allows everything; handlers never need
// to special-case it.
type PredictLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewPredictLimiter(cfg config.Config) (*PredictLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.PredictRate <= 0 || limitCfg.PredictBurst <= 0 {
		return nil, errors.New("predict rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	return &PredictLimiter{
		bucket: NewTokenBucket(client),
		rate:   limitCfg.PredictRate,
		burst:  limitCfg.PredictBurst,
	}, nil
}

// Allow takes one token for the client. Fails open on Redis errors: a
// broken limiter must not take the prediction path down with it.
func (l *PredictLimiter) Allow(ctx context.Context, clientKey string) (*Result, error) {
	if l == nil {
		return &Result{Allowed: true}, nil
	}
	key := fmt.Sprintf(keyPredictClient, clientKey)
	res, err := l.bucket.Allow(ctx, key, l.rate, l.burst)
	if err != nil {
		return &Result{Allowed: true}, err
	}
	return res, nil
}
