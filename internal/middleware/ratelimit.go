package middleware

import (
	"fmt"
	"time"

	"github.com/bhutan-travel/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitOptions bounds anonymous requests per client IP in fixed windows.
type RateLimitOptions struct {
	Max    int64
	Window time.Duration
	Prefix string
}

func (o RateLimitOptions) normalize() RateLimitOptions {
	if o.Max <= 0 {
		o.Max = 50
	}
	if o.Window <= 0 {
		o.Window = time.Second
	}
	if o.Prefix == "" {
		o.Prefix = "global"
	}
	return o
}

// RateLimit counts requests per IP in redis. Authenticated admins and a nil
// client pass through; redis errors fail open.
func RateLimit(rdb *redis.Client, opts RateLimitOptions, log *zap.Logger) gin.HandlerFunc {
	opts = opts.normalize()
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		if rdb == nil || IsAuthenticated(c) {
			c.Next()
			return
		}

		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		windowKey := time.Now().UnixNano() / int64(opts.Window)
		key := fmt.Sprintf("bt:rate_limit:%s:%s:%d", opts.Prefix, ip, windowKey)

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}

		if count == 1 {
			rdb.PExpire(ctx, key, opts.Window+time.Second)
		}

		if count > opts.Max {
			log.Warn("rate limited", zap.String("ip", ip), zap.String("path", c.Request.URL.Path))
			c.Header("Retry-After", fmt.Sprintf("%d", int(opts.Window.Seconds())+1))
			response.TooManyRequests(c)
			return
		}

		c.Next()
	}
}
