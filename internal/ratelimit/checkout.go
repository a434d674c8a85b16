package ratelimit

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Checkout throttle per customer. Roughly one checkout every five seconds
// with a small burst for retries.
const (
	checkoutRate  = 0.2
	checkoutBurst = 3
)

// CheckoutLimiter throttles checkout submissions per customer. Without a
// redis client it fails open: checkout is never blocked by limiter outages.
type CheckoutLimiter struct {
	log    *zap.Logger
	bucket *TokenBucket
}

func NewCheckoutLimiter(log *zap.Logger, client *redis.Client) *CheckoutLimiter {
	return &CheckoutLimiter{
		log:    log.Named("ratelimit.checkout"),
		bucket: NewTokenBucket(client),
	}
}

// Allow reports whether the customer may submit a checkout now.
func (l *CheckoutLimiter) Allow(ctx context.Context, customerID snowflake.ID) (*Result, error) {
	if l == nil || l.bucket == nil {
		return &Result{Allowed: true}, nil
	}
	key := fmt.Sprintf("colmado:ratelimit:checkout:%s", customerID)
	result, err := l.bucket.Allow(ctx, key, checkoutRate, checkoutBurst)
	if err != nil {
		l.log.Warn("rate limit check failed, allowing request",
			zap.String("customer_id", customerID.String()),
			zap.Error(err),
		)
		return &Result{Allowed: true}, nil
	}
	return result, nil
}
