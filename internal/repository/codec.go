package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	apperrors "shift-calendar/backend/pkg/errors"
)

// loadJSON 读取槽位并解码到 dst。
// 槽位不存在或内容损坏时返回 false 且不报错，调用方使用默认值；损坏内容记录告警。
func loadJSON(ctx context.Context, store SlotStore, key string, dst any, logger *zap.Logger) (bool, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, apperrors.ErrSlotNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("读取槽位 %s 失败: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logger.Warn("槽位内容无法解析，使用默认值", zap.String("slot", key), zap.Error(err))
		return false, nil
	}
	return true, nil
}

func saveJSON(ctx context.Context, store SlotStore, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("序列化槽位 %s 失败: %w", key, err)
	}
	if err := store.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("写入槽位 %s 失败: %w", key, err)
	}
	return nil
}

// loadString 读取纯文本槽位，不存在时返回空字符串
func loadString(ctx context.Context, store SlotStore, key string) (string, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, apperrors.ErrSlotNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("读取槽位 %s 失败: %w", key, err)
	}
	return string(raw), nil
}
