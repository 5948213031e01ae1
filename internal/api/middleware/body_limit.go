package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shift-calendar/backend/pkg/response"
)

// BodyLimit 全局请求体大小限制中间件
// maxBytes: 允许的最大请求体字节数，需大于附件上限加上 multipart 开销
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 声明长度已超限时直接拒绝，不读取请求体
		if c.Request.ContentLength > maxBytes {
			response.TooLarge(c, 10005, "请求体过大")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
