package recurrence

import (
	"fmt"
	"time"

	"shift-calendar/backend/internal/model"
)

// 日期运算统一落在 UTC 正午，避免时区/夏令时造成的日期漂移
const anchorHour = 12

// ParseDate 解析 YYYY-MM-DD 并归一到 UTC 12:00
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(model.DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return normalize(t), nil
}

// FormatDate 输出 YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.UTC().Format(model.DateLayout)
}

// DateOf 取时间点在 UTC 下的日期部分
func DateOf(t time.Time) string {
	return FormatDate(normalize(t.UTC()))
}

// AddDays 日期加减天数
func AddDays(date string, days int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, days)), nil
}

// DayBefore 前一天，用于截断旧系列的结束日期
func DayBefore(date string) (string, error) {
	return AddDays(date, -1)
}

// addMonthsClamped 以锚点日期为基准加若干自然月。
// 目标月份不存在锚点的日号时取该月最后一天；锚点本身不变，因此不会累积漂移。
func addMonthsClamped(anchor time.Time, months int) time.Time {
	y, m, d := anchor.Date()
	total := int(m) - 1 + months
	year := y + total/12
	month := time.Month(total%12 + 1)
	if last := daysIn(year, month); d > last {
		d = last
	}
	return time.Date(year, month, d, anchorHour, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, anchorHour, 0, 0, 0, time.UTC).Day()
}

func normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), anchorHour, 0, 0, 0, time.UTC)
}
