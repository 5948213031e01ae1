package service

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"shift-calendar/backend/internal/model"
	"shift-calendar/backend/internal/recurrence"
)

// ── ICS 解析器 ──────────────────────────────────────────────
//
// 职责：将 iCalendar (RFC 5545) 内容解析为待导入的班次。
//
//   - DTSTART 决定日期与起始时间；VALUE=DATE 的全天事件没有时间
//   - DTEND 决定结束时间，缺失时按 DURATION 推算
//   - RRULE 仅支持 DAILY / WEEKLY / MONTHLY + INTERVAL；
//     UNTIL 直接作为结束日期，COUNT 换算为第 COUNT 次出现的日期，
//     两者都没有时最多展开一年
//   - EXDATE 记录为需要剔除的日期
//   - 本系统导出的 X-TURNI-* 属性还原优先级、完成状态与交班备忘
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize  = 5 * 1024 * 1024 // 5MB
	icsFetchTimeout = 30 * time.Second
	icsOpenEndSpan  = 1 // 无结束条件的重复最多展开的年数
)

// importedEvent ICS 解析中间结构
type importedEvent struct {
	Date            string
	StartTime       string
	EndTime         string
	Notes           string
	ShiftChangeMemo string
	Priority        model.Priority
	IsCompleted     bool
	Rule            *model.RecurrenceRule
	ExDates         map[string]bool
}

// FetchICSContent 从 URL 获取 ICS 内容
func FetchICSContent(rawURL string) (io.ReadCloser, error) {
	// webcal:// → https://
	u := rawURL
	if strings.HasPrefix(u, "webcal://") {
		u = "https://" + strings.TrimPrefix(u, "webcal://")
	}

	client := &http.Client{Timeout: icsFetchTimeout}
	resp, err := client.Get(u)
	if err != nil {
		return nil, fmt.Errorf("获取 ICS 失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("获取 ICS 失败: HTTP %d", resp.StatusCode)
	}
	// 限制响应体大小，防止恶意 URL 返回超大内容导致 OOM
	return struct {
		io.Reader
		io.Closer
	}{
		Reader: io.LimitReader(resp.Body, icsMaxFileSize),
		Closer: resp.Body,
	}, nil
}

// parseICS 解析 ICS 内容，返回可导入的事件与无法识别的事件数
func parseICS(reader io.Reader, loc *time.Location) ([]importedEvent, int, error) {
	cal, err := ics.ParseCalendar(io.LimitReader(reader, icsMaxFileSize))
	if err != nil {
		return nil, 0, fmt.Errorf("ICS 格式解析失败: %w", err)
	}

	var (
		events  []importedEvent
		skipped int
	)
	for _, comp := range cal.Events() {
		evt, ok := parseVEvent(comp, loc)
		if !ok {
			skipped++
			continue
		}
		events = append(events, evt)
	}
	return events, skipped, nil
}

// parseVEvent 解析单个 VEVENT 组件
func parseVEvent(evt *ics.VEvent, loc *time.Location) (importedEvent, bool) {
	start, allDay, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil {
		return importedEvent{}, false
	}

	out := importedEvent{
		Date:     start.Format(model.DateLayout),
		Priority: model.PriorityMedium,
		ExDates:  parseExDates(evt, loc),
	}
	if !allDay {
		out.StartTime = start.Format("15:04")
		if end, _, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd, loc); err == nil {
			out.EndTime = end.Format("15:04")
		} else if d, ok := parseICSDuration(propValue(evt, ics.ComponentPropertyDuration)); ok {
			out.EndTime = start.Add(d).Format("15:04")
		}
	}

	summary := strings.TrimSpace(propValue(evt, ics.ComponentPropertySummary))
	desc := strings.TrimSpace(propValue(evt, ics.ComponentPropertyDescription))
	switch {
	case summary != "" && desc != "":
		out.Notes = summary + "\n" + desc
	case summary != "":
		out.Notes = summary
	default:
		out.Notes = desc
	}

	if p := model.Priority(propValue(evt, icsPropPriority)); p.Valid() {
		out.Priority = p
	}
	out.IsCompleted = propValue(evt, icsPropCompleted) == "true"
	out.ShiftChangeMemo = propValue(evt, icsPropMemo)

	if rr := propValue(evt, ics.ComponentPropertyRrule); rr != "" {
		out.Rule = toRecurrenceRule(parseRRule(rr, loc), start)
	}
	return out, true
}

// rruleParams RRULE 解析结果
type rruleParams struct {
	freq     string
	interval int
	count    int
	until    time.Time
}

// parseRRule 解析 RRULE 字符串（如 FREQ=WEEKLY;COUNT=16;INTERVAL=1）
func parseRRule(value string, loc *time.Location) rruleParams {
	r := rruleParams{interval: 1}
	for _, part := range strings.Split(value, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToUpper(kv[0]) {
		case "FREQ":
			r.freq = strings.ToUpper(kv[1])
		case "INTERVAL":
			if n, err := strconv.Atoi(kv[1]); err == nil && n > 0 {
				r.interval = n
			}
		case "COUNT":
			if n, err := strconv.Atoi(kv[1]); err == nil {
				r.count = n
			}
		case "UNTIL":
			if t, err := time.Parse("20060102T150405Z", kv[1]); err == nil {
				r.until = t.In(loc)
			} else if t, err := time.ParseInLocation("20060102", kv[1], loc); err == nil {
				r.until = t
			}
		}
	}
	return r
}

// toRecurrenceRule 将 RRULE 转为重复规则；不支持的频率返回 nil（按单次事件导入）
func toRecurrenceRule(r rruleParams, start time.Time) *model.RecurrenceRule {
	var freq model.Frequency
	switch r.freq {
	case "DAILY":
		freq = model.FrequencyDaily
	case "WEEKLY":
		freq = model.FrequencyWeekly
	case "MONTHLY":
		freq = model.FrequencyMonthly
	default:
		return nil
	}

	if r.interval > recurrence.MaxInterval {
		return nil
	}
	rule := &model.RecurrenceRule{Frequency: freq, Interval: r.interval}
	startDate := start.Format(model.DateLayout)
	anchor, _ := recurrence.ParseDate(startDate)
	switch {
	case !r.until.IsZero():
		rule.EndDate = r.until.Format(model.DateLayout)
	case r.count > 0:
		if r.count > recurrence.MaxOccurrences {
			r.count = recurrence.MaxOccurrences
		}
		rule.EndDate = recurrence.FormatDate(recurrence.Occurrence(anchor, *rule, r.count-1))
	default:
		rule.EndDate = recurrence.FormatDate(anchor.AddDate(icsOpenEndSpan, 0, 0))
	}
	return rule
}

// parseExDates 解析事件中所有 EXDATE（可能一行多个值）
func parseExDates(evt *ics.VEvent, loc *time.Location) map[string]bool {
	exDates := make(map[string]bool)
	for _, prop := range evt.Properties {
		if prop.IANAToken != string(ics.ComponentPropertyExdate) {
			continue
		}
		for _, v := range strings.Split(prop.Value, ",") {
			if t, _, err := parseICSValue(strings.TrimSpace(v), tzidOf(prop), loc); err == nil {
				exDates[t.Format(model.DateLayout)] = true
			}
		}
	}
	return exDates
}

// parseICSDuration 支持 PnD / PTnHnMnS 组合，如 PT8H、P1DT2H30M
func parseICSDuration(v string) (time.Duration, bool) {
	v = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(v)), "+")
	rest, ok := strings.CutPrefix(v, "P")
	if !ok || rest == "" {
		return 0, false
	}
	var (
		total  time.Duration
		num    int
		inTime bool
		seen   bool
	)
	for _, c := range rest {
		switch {
		case c >= '0' && c <= '9':
			num = num*10 + int(c-'0')
			seen = true
			continue
		case c == 'T':
			inTime = true
			continue
		case c == 'W' && !inTime:
			total += time.Duration(num) * 7 * 24 * time.Hour
		case c == 'D' && !inTime:
			total += time.Duration(num) * 24 * time.Hour
		case c == 'H' && inTime:
			total += time.Duration(num) * time.Hour
		case c == 'M' && inTime:
			total += time.Duration(num) * time.Minute
		case c == 'S' && inTime:
			total += time.Duration(num) * time.Second
		default:
			return 0, false
		}
		num = 0
	}
	return total, seen
}

// ── 辅助函数 ──

func propValue(evt *ics.VEvent, name ics.ComponentProperty) string {
	if p := evt.GetProperty(name); p != nil {
		return p.Value
	}
	return ""
}

func tzidOf(prop ics.IANAProperty) string {
	for k, v := range prop.ICalParameters {
		if strings.ToUpper(k) == "TZID" && len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

// parseICSDateTime 从 VEVENT 中解析日期时间属性，allDay 表示只有日期
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, bool, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, false, fmt.Errorf("missing property %s", propName)
	}
	return parseICSValue(prop.Value, tzidOf(*prop), loc)
}

// parseICSValue 依次尝试 UTC、本地时间与纯日期格式
func parseICSValue(val, tzid string, loc *time.Location) (time.Time, bool, error) {
	if t, err := time.Parse("20060102T150405Z", val); err == nil {
		return t.In(loc), false, nil
	}
	if t, err := time.Parse("20060102T150405", val); err == nil {
		src := loc
		if tzid != "" {
			if tzLoc, err := time.LoadLocation(tzid); err == nil {
				src = tzLoc
			}
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, src).In(loc), false, nil
	}
	if t, err := time.ParseInLocation("20060102", val, loc); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("无法解析日期: %s", val)
}
