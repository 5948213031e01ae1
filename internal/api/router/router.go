package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shift-calendar/backend/config"
	"shift-calendar/backend/internal/api/handler"
	"shift-calendar/backend/internal/api/middleware"
	"shift-calendar/backend/pkg/redis"
)

// HealthCheck 健康检查依赖项（存储连接等）
type HealthCheck func(ctx context.Context) error

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时写接口不限流；check 为 nil 时健康检查只返回进程状态
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, check HealthCheck, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimitBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				logger.Warn("健康检查失败", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	var limiter middleware.Limiter
	if rdb != nil {
		limiter = redis.NewRateLimiter(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}
	writeLimit := middleware.RateLimit(limiter, logger)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 班次模块
		shifts := v1.Group("/shifts")
		{
			shifts.GET("", h.Shift.ListShifts)
			shifts.GET("/month", h.Shift.GetMonth)
			shifts.GET("/date/:date", h.Shift.GetDate)
			shifts.GET("/:id", h.Shift.GetShift)
			shifts.POST("", writeLimit, h.Shift.CreateShift)
			shifts.PUT("/:id", writeLimit, h.Shift.UpdateShift)
			shifts.DELETE("/:id", writeLimit, h.Shift.DeleteShift)
			shifts.POST("/:id/toggle-completion", writeLimit, h.Shift.ToggleCompletion)

			// 附件
			shifts.POST("/:id/documents", writeLimit, h.Document.AddDocument)
			shifts.GET("/:id/documents/:docId", h.Document.DownloadDocument)
			shifts.DELETE("/:id/documents/:docId", writeLimit, h.Document.RemoveDocument)
		}

		// 班次类型模块
		shiftTypes := v1.Group("/shift-types")
		{
			shiftTypes.GET("", h.ShiftType.ListShiftTypes)
			shiftTypes.PUT("", writeLimit, h.ShiftType.ReplaceShiftTypes)
			shiftTypes.POST("", writeLimit, h.ShiftType.CreateShiftType)
			shiftTypes.PUT("/:id", writeLimit, h.ShiftType.UpdateShiftType)
			shiftTypes.DELETE("/:id", writeLimit, h.ShiftType.DeleteShiftType)
		}

		// 设置模块
		v1.GET("/settings", h.Settings.GetSettings)
		v1.PUT("/settings", writeLimit, h.Settings.UpdateSettings)

		// 导出/导入模块
		v1.GET("/export", h.Export.Export)
		v1.POST("/import/ics", writeLimit, h.Export.ImportICS)
	}

	return r
}
