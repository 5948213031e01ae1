package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shift-calendar/backend/pkg/redis"
	"shift-calendar/backend/pkg/response"
)

// Limiter 按 scope 计数的限流器
type Limiter interface {
	Allow(ctx context.Context, scope string) (redis.RateLimitResult, error)
}

// RateLimit 写接口限流：同一来源 IP 对同一路由的请求共用一个计数。
// limiter 为 nil（未启用 redis）时直接放行；限流器出错时记录日志后放行。
func RateLimit(limiter Limiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		scope := c.ClientIP() + ":" + c.Request.Method + ":" + c.FullPath()
		res, err := limiter.Allow(c.Request.Context(), scope)
		if err != nil {
			logger.Warn("限流检查失败，放行请求", zap.String("scope", scope), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if !res.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
			response.Error(c, http.StatusTooManyRequests, 10004, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
