package service

import (
	"context"
	"sync"

	"shift-calendar/backend/internal/model"
	"shift-calendar/backend/internal/repository"
	"shift-calendar/backend/internal/series"
)

// ShiftStore 班次集合的唯一写入口
//
// 所有 读取 → 计算 → 整体替换 周期在同一把锁内完成，班次服务、附件、导入与
// 提醒扫描共用同一个实例，保证任一时刻只有一个变更在进行。
type ShiftStore struct {
	mu   sync.Mutex
	repo repository.ShiftRepository
}

// NewShiftStore 创建 ShiftStore
func NewShiftStore(repo repository.ShiftRepository) *ShiftStore {
	return &ShiftStore{repo: repo}
}

// Snapshot 读取当前集合
func (s *ShiftStore) Snapshot(ctx context.Context) ([]model.ShiftInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.List(ctx)
}

// Mutate 在锁内读取集合、调用 fn 计算结果并整体写回。
// fn 返回错误或 nil 结果时不写入。
func (s *ShiftStore) Mutate(ctx context.Context, fn func([]model.ShiftInstance) (*series.Result, error)) (*series.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shifts, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	res, err := fn(shifts)
	if err != nil || res == nil {
		return res, err
	}
	if err := s.repo.ReplaceAll(ctx, res.Shifts); err != nil {
		return nil, err
	}
	return res, nil
}
