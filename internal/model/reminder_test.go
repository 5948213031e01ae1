package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestShiftInstance_UnmarshalReminderTime(t *testing.T) {
	SetReminderLocation(time.UTC)
	defer SetReminderLocation(nil)

	cases := []struct {
		name string
		raw  string
		want *time.Time
	}{
		{"本地分钟精度", `"2024-03-05T07:30"`, ptr(time.Date(2024, 3, 5, 7, 30, 0, 0, time.UTC))},
		{"本地秒精度", `"2024-03-05T07:30:15"`, ptr(time.Date(2024, 3, 5, 7, 30, 15, 0, time.UTC))},
		{"RFC3339 带偏移", `"2024-03-05T07:30:00+01:00"`, ptr(time.Date(2024, 3, 5, 6, 30, 0, 0, time.UTC))},
		{"毫秒 Z", `"2024-03-05T06:30:00.000Z"`, ptr(time.Date(2024, 3, 5, 6, 30, 0, 0, time.UTC))},
		{"null", `null`, nil},
		{"空字符串", `""`, nil},
		{"无法识别", `"domani"`, nil},
		{"非字符串", `12345`, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var s ShiftInstance
			blob := `{"id":"a","date":"2024-03-05","typeId":"mattina","notes":"x","reminderDateTime":` + tc.raw + `}`
			if err := json.Unmarshal([]byte(blob), &s); err != nil {
				t.Fatalf("解析失败: %v", err)
			}
			if s.ID != "a" || s.TypeID != "mattina" || s.Notes != "x" {
				t.Errorf("其余字段未正确解析: %+v", s)
			}
			switch {
			case tc.want == nil && s.ReminderDateTime != nil:
				t.Errorf("期望无提醒时间，实际 %v", s.ReminderDateTime)
			case tc.want != nil && (s.ReminderDateTime == nil || !s.ReminderDateTime.Equal(*tc.want)):
				t.Errorf("期望 %v，实际 %v", tc.want, s.ReminderDateTime)
			}
		})
	}
}

func TestShiftInstance_MarshalKeepsRFC3339(t *testing.T) {
	at := time.Date(2024, 3, 5, 7, 30, 0, 0, time.UTC)
	buf, err := json.Marshal(ShiftInstance{ID: "a", Date: "2024-03-05", TypeID: "mattina", ReminderDateTime: &at})
	if err != nil {
		t.Fatalf("序列化失败: %v", err)
	}
	var back ShiftInstance
	if err := json.Unmarshal(buf, &back); err != nil {
		t.Fatalf("反序列化失败: %v", err)
	}
	if back.ReminderDateTime == nil || !back.ReminderDateTime.Equal(at) {
		t.Errorf("期望 %v，实际 %v", at, back.ReminderDateTime)
	}
}

func ptr(t time.Time) *time.Time { return &t }
