package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// 服务只返回 JSON 与下载文件，不需要加载任何页面资源
var staticSecurityHeaders = [][2]string{
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "no-referrer"},
	{"Cross-Origin-Resource-Policy", "same-site"},
}

// SecurityHeaders 安全响应头
//
// 班次、备注与附件属于个人数据：/api 下的响应一律不缓存。
// 经 HTTPS（含反向代理转发）访问时附加 HSTS。
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		for _, kv := range staticSecurityHeaders {
			h.Set(kv[0], kv[1])
		}
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			h.Set("Cache-Control", "no-store")
		}
		if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
			h.Set("Strict-Transport-Security", "max-age=31536000")
		}

		c.Next()
	}
}
