package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"shift-calendar/backend/config"
	"shift-calendar/backend/internal/api/handler"
	"shift-calendar/backend/internal/api/router"
	"shift-calendar/backend/internal/dto"
	"shift-calendar/backend/internal/repository"
	"shift-calendar/backend/internal/service"
	"shift-calendar/backend/pkg/database"
	applogger "shift-calendar/backend/pkg/logger"
	"shift-calendar/backend/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("notify", cfg.Notify.Driver),
		zap.String("timezone", cfg.Timezone),
	)

	if err := dto.RegisterValidators(); err != nil {
		logger.Fatal("注册校验规则失败", zap.Error(err))
	}

	// 3. 存储
	var (
		store   repository.SlotStore
		rdb     *redis.Client
		check   router.HealthCheck
		closers []func()
	)
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := database.NewDB(&cfg.Database, logger)
		if err != nil {
			logger.Fatal("数据库连接失败", zap.Error(err))
		}
		sqlDB, err := db.DB()
		if err != nil {
			logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
		}
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			logger.Fatal("数据库迁移失败", zap.Error(err))
		}
		store = repository.NewGormStore(db)
		check = sqlDB.PingContext
		closers = append(closers, func() { sqlDB.Close() })
	case config.StorageRedis:
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Fatal("Redis 连接失败", zap.Error(err))
		}
		store = repository.NewRedisStore(rdb)
		check = rdb.Ping
	default:
		store = repository.NewMemoryStore()
		logger.Warn("使用内存存储，进程退出后数据不保留")
	}

	// 非 redis 存储时 Redis 仅用于写接口限流（可选：连接失败时降级运行，不中断启动）
	if rdb == nil && cfg.Redis.Addr != "" && cfg.Storage.Driver != config.StorageMemory {
		if rdb, err = redis.NewClient(&cfg.Redis, logger); err != nil {
			logger.Warn("Redis 连接失败，写接口限流将不可用", zap.Error(err))
			rdb = nil
		}
	}
	if rdb != nil {
		closers = append(closers, func() { rdb.Close() })
	}

	// 4. 提醒投递
	notifier, closeNotifier := buildNotifier(cfg, logger)
	closers = append(closers, closeNotifier)

	// 5. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(store, logger)
	svc := service.NewService(cfg, repo, notifier, logger)

	loadCtx, loadCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := svc.Settings.Load(loadCtx); err != nil {
		logger.Fatal("加载应用设置失败", zap.Error(err))
	}
	loadCancel()

	h := handler.NewHandler(svc)

	// 6. 提醒扫描
	runCtx, stopReminders := context.WithCancel(context.Background())
	reminderDone := make(chan struct{})
	if cfg.Reminder.Enabled {
		go func() {
			defer close(reminderDone)
			svc.Reminder.Run(runCtx)
		}()
	} else {
		close(reminderDone)
	}

	// 7. 初始化路由
	engine := router.Setup(cfg, h, rdb, check, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	stopReminders()
	<-reminderDone

	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}

	logger.Info("服务器已关闭")
}

// buildNotifier 按 notify.driver 创建提醒投递方式。
// amqp / smtp 投递失败时回退到日志告警；连接失败时直接使用日志告警。
func buildNotifier(cfg *config.Config, logger *zap.Logger) (service.Notifier, func()) {
	alert := service.NewLogNotifier(logger)
	noop := func() {}

	switch cfg.Notify.Driver {
	case config.NotifyAMQP:
		ch, closeFn, err := service.DialAMQP(&cfg.Notify.AMQP)
		if err != nil {
			logger.Warn("RabbitMQ 连接失败，提醒仅记录日志", zap.Error(err))
			return alert, noop
		}
		logger.Info("提醒通过 RabbitMQ 投递", zap.String("queue", cfg.Notify.AMQP.Queue))
		primary := service.NewAMQPNotifier(ch, cfg.Notify.AMQP.Queue, cfg.Notify.AMQP.PublishTimeout)
		return service.NewFallbackNotifier(primary, alert, logger), closeFn
	case config.NotifySMTP:
		client, err := service.NewMailClient(&cfg.Notify.SMTP)
		if err != nil {
			logger.Warn("邮件客户端初始化失败，提醒仅记录日志", zap.Error(err))
			return alert, noop
		}
		logger.Info("提醒通过邮件投递", zap.String("to", cfg.Notify.SMTP.To))
		primary := service.NewSMTPNotifier(client, cfg.Notify.SMTP.From, cfg.Notify.SMTP.To)
		return service.NewFallbackNotifier(primary, alert, logger), noop
	default:
		return alert, noop
	}
}
