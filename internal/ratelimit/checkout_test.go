package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCheckoutLimiterFailsOpenWithoutRedis(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	limiter := NewCheckoutLimiter(zap.NewNop(), nil)

	result, err := limiter.Allow(context.Background(), node.Generate())
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestTokenBucketRejectsMisuse(t *testing.T) {
	var bucket *TokenBucket

	_, err := bucket.Allow(context.Background(), "k", 1, 1)
	assert.Error(t, err)
}

func TestBucketTTLCoversRefill(t *testing.T) {
	// Refilling 3 tokens at 0.2/s takes 15s; the bucket must outlive that.
	ttl := bucketTTL(0.2, 3)
	assert.GreaterOrEqual(t, ttl, 15*time.Second)
}
