package repository

import (
	"context"
	"sync"

	apperrors "shift-calendar/backend/pkg/errors"
)

// SlotStore 命名槽位存储：每个键对应一块完整内容，只支持整体读取与整体替换
//
// 槽位从未写入时 Get 返回 apperrors.ErrSlotNotFound。
type SlotStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// ── 内存实现（storage.driver=memory，测试同样使用） ──

type memoryStore struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemoryStore 创建进程内槽位存储，重启后数据丢失
func NewMemoryStore() SlotStore {
	return &memoryStore{slots: make(map[string][]byte)}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.slots[key]
	if !ok {
		return nil, apperrors.ErrSlotNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *memoryStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots[key] = append([]byte(nil), value...)
	return nil
}
