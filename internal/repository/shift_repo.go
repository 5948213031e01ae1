package repository

import (
	"context"

	"go.uber.org/zap"

	"shift-calendar/backend/internal/model"
)

// ShiftRepository 班次集合数据访问接口，只支持整体读取与整体替换
type ShiftRepository interface {
	List(ctx context.Context) ([]model.ShiftInstance, error)
	ReplaceAll(ctx context.Context, shifts []model.ShiftInstance) error
}

type shiftRepo struct {
	store  SlotStore
	logger *zap.Logger
}

// NewShiftRepo 创建 ShiftRepository 实例
func NewShiftRepo(store SlotStore, logger *zap.Logger) ShiftRepository {
	return &shiftRepo{store: store, logger: logger}
}

func (r *shiftRepo) List(ctx context.Context) ([]model.ShiftInstance, error) {
	var shifts []model.ShiftInstance
	ok, err := loadJSON(ctx, r.store, model.SlotShifts, &shifts, r.logger)
	if err != nil {
		return nil, err
	}
	if !ok || shifts == nil {
		return []model.ShiftInstance{}, nil
	}
	return shifts, nil
}

func (r *shiftRepo) ReplaceAll(ctx context.Context, shifts []model.ShiftInstance) error {
	if shifts == nil {
		shifts = []model.ShiftInstance{}
	}
	return saveJSON(ctx, r.store, model.SlotShifts, shifts)
}
