package repository

import "go.uber.org/zap"

// Repository 所有 Repository 的聚合入口，共享同一个槽位存储
type Repository struct {
	Shift     ShiftRepository
	ShiftType ShiftTypeRepository
	Settings  SettingsRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(store SlotStore, logger *zap.Logger) *Repository {
	return &Repository{
		Shift:     NewShiftRepo(store, logger),
		ShiftType: NewShiftTypeRepo(store, logger),
		Settings:  NewSettingsRepo(store, logger),
	}
}
