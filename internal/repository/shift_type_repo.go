package repository

import (
	"context"

	"go.uber.org/zap"

	"shift-calendar/backend/internal/model"
)

// ShiftTypeRepository 班次类型数据访问接口
type ShiftTypeRepository interface {
	// List 槽位不存在或内容损坏时返回内置默认类型
	List(ctx context.Context) ([]model.ShiftType, error)
	ReplaceAll(ctx context.Context, types []model.ShiftType) error
}

type shiftTypeRepo struct {
	store  SlotStore
	logger *zap.Logger
}

// NewShiftTypeRepo 创建 ShiftTypeRepository 实例
func NewShiftTypeRepo(store SlotStore, logger *zap.Logger) ShiftTypeRepository {
	return &shiftTypeRepo{store: store, logger: logger}
}

func (r *shiftTypeRepo) List(ctx context.Context) ([]model.ShiftType, error) {
	var types []model.ShiftType
	ok, err := loadJSON(ctx, r.store, model.SlotShiftTypes, &types, r.logger)
	if err != nil {
		return nil, err
	}
	if !ok || types == nil {
		return model.DefaultShiftTypes(), nil
	}
	return types, nil
}

func (r *shiftTypeRepo) ReplaceAll(ctx context.Context, types []model.ShiftType) error {
	if types == nil {
		types = []model.ShiftType{}
	}
	return saveJSON(ctx, r.store, model.SlotShiftTypes, types)
}
