package repository

import (
	"context"

	"shift-calendar/backend/pkg/redis"
)

type redisStore struct {
	client *redis.Client
}

// NewRedisStore 基于 Redis 字符串键的槽位存储（storage.driver=redis）
// 键名为 redis.slot_prefix + 槽位名
func NewRedisStore(client *redis.Client) SlotStore {
	return &redisStore{client: client}
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.client.GetSlot(ctx, key)
}

func (s *redisStore) Put(ctx context.Context, key string, value []byte) error {
	return s.client.SetSlot(ctx, key, value)
}
