package model

import "time"

// DateLayout 班次日期格式（YYYY-MM-DD）
const DateLayout = "2006-01-02"

// Priority 班次优先级
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid 判断优先级取值是否合法
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank 排序权重：high > medium > low，未知值按 low 处理
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	default:
		return 1
	}
}

// Frequency 重复频率
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// RecurrenceRule 重复规则。系列中每个实例各自持有一份值拷贝（非规范化）。
type RecurrenceRule struct {
	Frequency Frequency `json:"frequency"`
	Interval  int       `json:"interval"`
	EndDate   string    `json:"endDate"` // YYYY-MM-DD，含当天
}

// Document 班次附件，内容以 data URL 内联存储
type Document struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// CompletionStatus 完成状态
type CompletionStatus string

const (
	StatusCompleted  CompletionStatus = "completed"
	StatusIncomplete CompletionStatus = "incomplete"
)

// StatusOf 将布尔完成标记映射为状态值
func StatusOf(completed bool) CompletionStatus {
	if completed {
		return StatusCompleted
	}
	return StatusIncomplete
}

// CompletionEntry 完成状态变更记录（只追加，不可修改）
type CompletionEntry struct {
	Status    CompletionStatus `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
}

// ShiftInstance 一个具体的班次实例
//
// JSON 字段名沿用客户端本地存储的驼峰格式，旧数据可直接加载。
type ShiftInstance struct {
	ID                string            `json:"id"`
	Date              string            `json:"date"`
	TypeID            string            `json:"typeId"`
	StartTime         string            `json:"startTime,omitempty"`
	EndTime           string            `json:"endTime,omitempty"`
	Notes             string            `json:"notes,omitempty"`
	ShiftChangeMemo   string            `json:"shiftChangeMemo,omitempty"`
	Documents         []Document        `json:"documents,omitempty"`
	Priority          Priority          `json:"priority,omitempty"`
	IsCompleted       bool              `json:"isCompleted,omitempty"`
	CompletionHistory []CompletionEntry `json:"completionHistory,omitempty"`
	ReminderDateTime  *time.Time        `json:"reminderDateTime,omitempty"`
	RecurrenceID      string            `json:"recurrenceId,omitempty"`
	RecurrenceRule    *RecurrenceRule   `json:"recurrenceRule,omitempty"`
	OriginalDate      string            `json:"originalDate,omitempty"`
}

// EffectivePriority 缺省优先级为 medium
func (s *ShiftInstance) EffectivePriority() Priority {
	if s.Priority == "" {
		return PriorityMedium
	}
	return s.Priority
}

// InSeries 是否属于某个重复系列
func (s *ShiftInstance) InSeries() bool {
	return s.RecurrenceID != ""
}

// Detach 清除所有系列字段，使实例成为独立班次
func (s *ShiftInstance) Detach() {
	s.RecurrenceID = ""
	s.RecurrenceRule = nil
	s.OriginalDate = ""
}

// Clone 深拷贝，切片与指针字段不与原值共享
func (s ShiftInstance) Clone() ShiftInstance {
	out := s
	if s.Documents != nil {
		out.Documents = append([]Document(nil), s.Documents...)
	}
	if s.CompletionHistory != nil {
		out.CompletionHistory = append([]CompletionEntry(nil), s.CompletionHistory...)
	}
	if s.ReminderDateTime != nil {
		t := *s.ReminderDateTime
		out.ReminderDateTime = &t
	}
	if s.RecurrenceRule != nil {
		r := *s.RecurrenceRule
		out.RecurrenceRule = &r
	}
	return out
}

// CloneShifts 深拷贝整个集合
func CloneShifts(in []ShiftInstance) []ShiftInstance {
	if in == nil {
		return nil
	}
	out := make([]ShiftInstance, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
