package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"shift-calendar/backend/config"
	apperrors "shift-calendar/backend/pkg/errors"
)

// Client Redis 客户端封装
// 用于命名槽位存储（storage.driver=redis）与写接口限流
type Client struct {
	rdb        goredis.UniversalClient
	slotPrefix string
	logger     *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return NewFromClient(rdb, cfg.SlotPrefix, logger), nil
}

// NewFromClient 包装已有连接
func NewFromClient(rdb goredis.UniversalClient, slotPrefix string, logger *zap.Logger) *Client {
	return &Client{rdb: rdb, slotPrefix: slotPrefix, logger: logger}
}

// ── 命名槽位 ──

// GetSlot 读取槽位原始内容，不存在时返回 ErrSlotNotFound
func (c *Client) GetSlot(ctx context.Context, key string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, c.slotPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, apperrors.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("读取槽位 %s 失败: %w", key, err)
	}
	return b, nil
}

// SetSlot 整体覆盖写入槽位，不设过期时间
func (c *Client) SetSlot(ctx context.Context, key string, value []byte) error {
	if err := c.rdb.Set(ctx, c.slotPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("写入槽位 %s 失败: %w", key, err)
	}
	return nil
}

// ── 限流 ──

// RateLimitResult 一次限流判定的结果
type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration // 仅在拒绝时有值：窗口内最早一次请求过期前的剩余时间
}

// RateLimiter 按 scope 计数的滑动窗口限流器，键位于槽位前缀下的 ratelimit: 命名空间
type RateLimiter struct {
	client *Client
	limit  int
	window time.Duration
}

// NewRateLimiter 创建限流器：每个 scope 在 window 内最多 limit 次请求
func NewRateLimiter(client *Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, limit: limit, window: window}
}

// Allow 记录一次请求并判定是否放行。
// 被拒绝的请求不计入窗口，持续重试不会延长封禁时间。
func (l *RateLimiter) Allow(ctx context.Context, scope string) (RateLimitResult, error) {
	key := l.client.slotPrefix + "ratelimit:" + scope
	now := time.Now()
	member := uuid.NewString()

	pipe := l.client.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(now.Add(-l.window).UnixNano(), 10))
	pipe.ZAdd(ctx, key, goredis.Z{Score: float64(now.UnixNano()), Member: member})
	card := pipe.ZCard(ctx, key)
	oldest := pipe.ZRangeWithScores(ctx, key, 0, 0)
	pipe.Expire(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return RateLimitResult{}, fmt.Errorf("限流计数失败: %w", err)
	}

	res := RateLimitResult{Limit: l.limit}
	count := int(card.Val())
	if count <= l.limit {
		res.Allowed = true
		res.Remaining = l.limit - count
		return res, nil
	}

	if err := l.client.rdb.ZRem(ctx, key, member).Err(); err != nil {
		l.client.logger.Warn("撤销被拒绝的限流记录失败", zap.String("scope", scope), zap.Error(err))
	}
	res.RetryAfter = l.window
	if zs := oldest.Val(); len(zs) > 0 {
		res.RetryAfter = time.Unix(0, int64(zs[0].Score)).Add(l.window).Sub(now)
	}
	if res.RetryAfter < time.Second {
		res.RetryAfter = time.Second
	}
	return res, nil
}

// Ping 健康检查
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
