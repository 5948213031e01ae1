package model

import "time"

// StorageSlot 命名槽位存储表，对应 storage_slots
// Value 为整块 JSON 文本，整体替换写入。
type StorageSlot struct {
	Key       string    `gorm:"type:varchar(64);primaryKey"        json:"key"`
	Value     string    `gorm:"type:text;not null"                 json:"value"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName 指定表名
func (StorageSlot) TableName() string { return "storage_slots" }
