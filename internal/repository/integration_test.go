//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shift-calendar/backend/config"
	"shift-calendar/backend/internal/model"
	"shift-calendar/backend/internal/repository"
	"shift-calendar/backend/pkg/database"
	apperrors "shift-calendar/backend/pkg/errors"
	"shift-calendar/backend/pkg/redis"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=turni password=turni_password dbname=turni_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "迁移失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func uniqueKey(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// ═══════════════════════════════════════════════════════════
// Test: gorm 槽位存储
// ═══════════════════════════════════════════════════════════

func TestGormStore_Upsert(t *testing.T) {
	ctx := context.Background()
	store := repository.NewGormStore(testDB)
	key := uniqueKey("slot")
	defer testDB.Where("key = ?", key).Delete(&model.StorageSlot{})

	if _, err := store.Get(ctx, key); !errors.Is(err, apperrors.ErrSlotNotFound) {
		t.Fatalf("期望 ErrSlotNotFound，实际: %v", err)
	}

	if err := store.Put(ctx, key, []byte(`["a"]`)); err != nil {
		t.Fatalf("首次写入失败: %v", err)
	}
	if err := store.Put(ctx, key, []byte(`["b"]`)); err != nil {
		t.Fatalf("覆盖写入失败: %v", err)
	}

	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if string(got) != `["b"]` {
		t.Errorf("期望覆盖后的内容，实际 %s", got)
	}

	var count int64
	testDB.Model(&model.StorageSlot{}).Where("key = ?", key).Count(&count)
	if count != 1 {
		t.Errorf("同一槽位只应有一行，实际 %d", count)
	}
}

func TestGormStore_ShiftRepository(t *testing.T) {
	ctx := context.Background()
	defer testDB.Where("key = ?", model.SlotShifts).Delete(&model.StorageSlot{})

	repo := repository.NewRepository(repository.NewGormStore(testDB), zap.NewNop())
	in := []model.ShiftInstance{{ID: "a", Date: "2024-01-01", TypeID: "notte"}}
	if err := repo.Shift.ReplaceAll(ctx, in); err != nil {
		t.Fatalf("ReplaceAll 失败: %v", err)
	}
	out, err := repo.Shift.List(ctx)
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if len(out) != 1 || out[0].ID != "a" {
		t.Errorf("读回内容不一致: %+v", out)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: redis 槽位存储
// ═══════════════════════════════════════════════════════════

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("未设置 TEST_REDIS_ADDR")
	}
	ctx := context.Background()
	client, err := redis.NewClient(&config.RedisConfig{Addr: addr, SlotPrefix: uniqueKey("test") + ":"}, zap.NewNop())
	if err != nil {
		t.Fatalf("连接 Redis 失败: %v", err)
	}
	defer client.Close()

	store := repository.NewRedisStore(client)
	if _, err := store.Get(ctx, "shifts"); !errors.Is(err, apperrors.ErrSlotNotFound) {
		t.Fatalf("期望 ErrSlotNotFound，实际: %v", err)
	}
	if err := store.Put(ctx, "shifts", []byte("[]")); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	got, err := store.Get(ctx, "shifts")
	if err != nil || string(got) != "[]" {
		t.Errorf("读回内容不一致: %s, %v", got, err)
	}

	limiter := redis.NewRateLimiter(client, 2, time.Minute)
	scope := uniqueKey("rate")
	for i := 0; i < 4; i++ {
		res, err := limiter.Allow(ctx, scope)
		if err != nil {
			t.Fatalf("限流计数失败: %v", err)
		}
		if want := i < 2; res.Allowed != want {
			t.Errorf("第 %d 次请求期望放行=%v，实际 %v", i+1, want, res.Allowed)
		}
		if !res.Allowed && (res.RetryAfter <= 0 || res.RetryAfter > time.Minute) {
			t.Errorf("拒绝时 RetryAfter 应在窗口内，实际 %v", res.RetryAfter)
		}
	}
}
