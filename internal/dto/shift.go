package dto

import "time"

// ── 班次模块 DTO ──

// RecurrenceRequest 重复规则。规则不完整或结束日期早于起始日期时按单个班次保存，不报错；
// interval 超过上限或系列过长时拒绝。
type RecurrenceRequest struct {
	Frequency string `json:"frequency"`
	Interval  int    `json:"interval" binding:"omitempty,max=999"`
	EndDate   string `json:"end_date"`
}

// SaveShiftRequest 新建班次请求（recurrence 存在时新建系列）
type SaveShiftRequest struct {
	Date             string             `json:"date"              binding:"required,ymd"`
	TypeID           string             `json:"type_id"           binding:"required,max=64"`
	StartTime        string             `json:"start_time"        binding:"omitempty,hhmm"`
	EndTime          string             `json:"end_time"          binding:"omitempty,hhmm"`
	Notes            string             `json:"notes"             binding:"max=2000"`
	ShiftChangeMemo  string             `json:"shift_change_memo" binding:"max=2000"`
	Priority         string             `json:"priority"          binding:"omitempty,oneof=low medium high"`
	IsCompleted      bool               `json:"is_completed"`
	ReminderAt       *time.Time         `json:"reminder_at"`
	Recurrence       *RecurrenceRequest `json:"recurrence"`
	ConfirmDuplicate bool               `json:"confirm_duplicate"` // 已确认保存与现有班次重复的单个班次
}

// UpdateShiftRequest 更新班次请求；目标属于系列时 scope 必填
type UpdateShiftRequest struct {
	SaveShiftRequest
	Scope string `json:"scope" binding:"omitempty,oneof=thisInstanceOnly thisAndFutureInstances allInstances"`
}

// DeleteShiftRequest 删除班次查询参数
type DeleteShiftRequest struct {
	Scope string `form:"scope" binding:"omitempty,oneof=thisInstanceOnly thisAndFutureInstances allInstances"`
}

// ShiftListRequest 列表视图查询参数；未给出的过滤条件取已保存的列表过滤设置
type ShiftListRequest struct {
	Start      string   `form:"start"    binding:"omitempty,ymd"`
	End        string   `form:"end"      binding:"omitempty,ymd"`
	Priorities []string `form:"priority" binding:"omitempty,dive,oneof=low medium high"`
	Status     string   `form:"status"   binding:"omitempty,oneof=all completed incomplete"`
	Types      []string `form:"type"`
	Sort       string   `form:"sort"     binding:"omitempty,oneof=date priority"`
	Order      string   `form:"order"    binding:"omitempty,oneof=asc desc"`
}

// MonthRequest 月视图查询参数
type MonthRequest struct {
	Month string   `form:"month" binding:"required,ym"`
	Types []string `form:"type"`
}

// ── 响应 ──

// DocumentResponse 附件信息；列表查询不返回内容
type DocumentResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// CompletionEntryResponse 完成状态变更记录
type CompletionEntryResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// RecurrenceResponse 重复规则
type RecurrenceResponse struct {
	Frequency string `json:"frequency"`
	Interval  int    `json:"interval"`
	EndDate   string `json:"end_date"`
}

// ShiftResponse 班次信息响应
type ShiftResponse struct {
	ID                string                    `json:"id"`
	Date              string                    `json:"date"`
	TypeID            string                    `json:"type_id"`
	Type              *ShiftTypeResponse        `json:"type,omitempty"` // 类型已删除时为空
	StartTime         string                    `json:"start_time,omitempty"`
	EndTime           string                    `json:"end_time,omitempty"`
	Notes             string                    `json:"notes,omitempty"`
	ShiftChangeMemo   string                    `json:"shift_change_memo,omitempty"`
	Documents         []DocumentResponse        `json:"documents"`
	Priority          string                    `json:"priority"`
	IsCompleted       bool                      `json:"is_completed"`
	CompletionHistory []CompletionEntryResponse `json:"completion_history"`
	ReminderAt        *string                   `json:"reminder_at,omitempty"`
	RecurrenceID      string                    `json:"recurrence_id,omitempty"`
	Recurrence        *RecurrenceResponse       `json:"recurrence,omitempty"`
	OriginalDate      string                    `json:"original_date,omitempty"`
}

// ShiftMutationResponse 变更结果：新增或更新的班次与被移除的 id
type ShiftMutationResponse struct {
	Changed []ShiftResponse `json:"changed"`
	Removed []string        `json:"removed"`
}
