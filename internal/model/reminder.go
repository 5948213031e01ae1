package model

import (
	"encoding/json"
	"sync/atomic"
	"time"
)

// 客户端 datetime-local 控件写入的提醒时间不带时区（如 2024-03-05T07:30）
var localReminderLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

var reminderLocation atomic.Pointer[time.Location]

// SetReminderLocation 设置不带时区的提醒时间所属的时区；nil 恢复为 time.Local
func SetReminderLocation(loc *time.Location) {
	reminderLocation.Store(loc)
}

// ReminderLocation 当前用于解释本地提醒时间的时区
func ReminderLocation() *time.Location {
	if loc := reminderLocation.Load(); loc != nil {
		return loc
	}
	return time.Local
}

// ParseReminderTime 解析提醒时间：RFC3339，或按 ReminderLocation 解释的本地时间
func ParseReminderTime(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	loc := ReminderLocation()
	for _, layout := range localReminderLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// UnmarshalJSON 放宽 reminderDateTime 的格式要求。
// 无法识别的提醒时间按未设置处理，不影响班次其余字段。
func (s *ShiftInstance) UnmarshalJSON(data []byte) error {
	type plain ShiftInstance
	aux := struct {
		*plain
		ReminderDateTime json.RawMessage `json:"reminderDateTime,omitempty"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.ReminderDateTime == nil {
		return nil
	}

	s.ReminderDateTime = nil
	var raw string
	if err := json.Unmarshal(aux.ReminderDateTime, &raw); err != nil || raw == "" {
		return nil
	}
	if t, ok := ParseReminderTime(raw); ok {
		s.ReminderDateTime = &t
	}
	return nil
}
