package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/tcg-catalog/pkg/response"
)

// WindowCounter counts hits of key inside the current window
type WindowCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisCounter is a fixed-window counter stored in redis
type RedisCounter struct {
	client *redis.Client
	prefix string
}

// NewRedisCounter creates a new RedisCounter
func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client, prefix: "ratelimit"}
}

// Hit increments the counter of the window containing now and returns its value
func (r *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	seconds := int64(window / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	bucket := time.Now().Unix() / seconds
	redisKey := fmt.Sprintf("%s:%s:%d", r.prefix, key, bucket)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, time.Duration(seconds)*time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// RateLimitMiddleware rejects clients that exceed limit requests per window.
// Counter failures let the request through.
func RateLimitMiddleware(counter WindowCounter, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if counter == nil || limit <= 0 {
			c.Next()
			return
		}

		count, err := counter.Hit(c.Request.Context(), c.ClientIP(), window)
		if err != nil {
			LogError("[%s] rate limiter unavailable: %v", GetRequestID(c), err)
			c.Next()
			return
		}

		remaining := int64(limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(limit) {
			response.TooManyRequests(c, "rate limit exceeded")
			c.Abort()
			return
		}
		c.Next()
	}
}
