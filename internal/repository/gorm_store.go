package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shift-calendar/backend/internal/model"
	apperrors "shift-calendar/backend/pkg/errors"
)

type gormStore struct {
	db *gorm.DB
}

// NewGormStore 基于 storage_slots 表的槽位存储（storage.driver=postgres）
func NewGormStore(db *gorm.DB) SlotStore {
	return &gormStore{db: db}
}

func (s *gormStore) Get(ctx context.Context, key string) ([]byte, error) {
	var slot model.StorageSlot
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(slot.Value), nil
}

// Put 按主键 upsert，整块覆盖 value
func (s *gormStore) Put(ctx context.Context, key string, value []byte) error {
	slot := model.StorageSlot{Key: key, Value: string(value), UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&slot).Error
}
