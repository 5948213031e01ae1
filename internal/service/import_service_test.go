package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"shift-calendar/backend/internal/dto"
	"shift-calendar/backend/internal/model"
)

func setupTestImportService(t *testing.T) (ImportService, *testEnv) {
	env := newTestEnv(t)
	return NewImportService(env.repo, env.shifts, env.engine, time.UTC, env.logger), env
}

func icsDoc(events ...string) string {
	return "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//test//test//IT\r\n" +
		strings.Join(events, "") +
		"END:VCALENDAR\r\n"
}

func vevent(lines ...string) string {
	return "BEGIN:VEVENT\r\n" + strings.Join(lines, "\r\n") + "\r\nEND:VEVENT\r\n"
}

func storedDates(shifts []model.ShiftInstance) []string {
	out := make([]string, 0, len(shifts))
	for _, s := range shifts {
		out = append(out, s.Date)
	}
	sort.Strings(out)
	return out
}

func TestImportService_SingleAndSeries(t *testing.T) {
	svc, env := setupTestImportService(t)
	doc := icsDoc(
		vevent(
			"UID:single@test",
			"DTSTART:20240510T070000Z",
			"DTEND:20240510T150000Z",
			"SUMMARY:Turno mattina",
			"DESCRIPTION:reparto A",
		),
		vevent(
			"UID:weekly@test",
			"DTSTART:20240301T220000Z",
			"DURATION:PT8H",
			"SUMMARY:Notte",
			"RRULE:FREQ=WEEKLY;INTERVAL=1;COUNT=4",
			"EXDATE:20240315T220000Z",
		),
	)

	resp, err := svc.ImportICS(context.Background(), "notte", strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ImportICS 应成功: %v", err)
	}
	if resp.Created != 4 || resp.Series != 1 || resp.Skipped != 0 {
		t.Errorf("期望 created=4 series=1 skipped=0，实际 %+v", resp)
	}

	stored := env.stored(t)
	want := []string{"2024-03-01", "2024-03-08", "2024-03-22", "2024-05-10"}
	got := storedDates(stored)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("期望日期 %v，实际 %v", want, got)
	}

	single, _ := shiftOnDate(stored, "2024-05-10")
	if single.StartTime != "07:00" || single.EndTime != "15:00" || single.Notes != "Turno mattina\nreparto A" {
		t.Errorf("单次事件字段不正确: %+v", single)
	}
	if single.TypeID != "notte" || single.RecurrenceID != "" {
		t.Errorf("单次事件应为独立班次: %+v", single)
	}

	night, _ := shiftOnDate(stored, "2024-03-08")
	if night.EndTime != "06:00" {
		t.Errorf("DURATION 应推算结束时间 06:00，实际 %s", night.EndTime)
	}
	if night.RecurrenceRule == nil || night.RecurrenceRule.EndDate != "2024-03-22" {
		t.Errorf("COUNT=4 应换算为结束日期 2024-03-22，实际 %+v", night.RecurrenceRule)
	}
}

func TestImportService_SkipsDuplicatesAndBrokenEvents(t *testing.T) {
	svc, env := setupTestImportService(t)
	env.seed(t, model.ShiftInstance{ID: "s1", Date: "2024-05-10", TypeID: "mattina", StartTime: "07:00", EndTime: "15:00"})

	doc := icsDoc(
		vevent("UID:dup@test", "DTSTART:20240510T070000Z", "DTEND:20240510T150000Z", "SUMMARY:dup"),
		vevent("UID:nostart@test", "SUMMARY:senza data"),
		vevent("UID:allday@test", "DTSTART;VALUE=DATE:20240511", "SUMMARY:Ferie"),
	)
	resp, err := svc.ImportICS(context.Background(), "mattina", strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ImportICS 应成功: %v", err)
	}
	if resp.Created != 1 || resp.Skipped != 2 {
		t.Errorf("期望 created=1 skipped=2，实际 %+v", resp)
	}
	allDay, ok := shiftOnDate(env.stored(t), "2024-05-11")
	if !ok || allDay.StartTime != "" || allDay.EndTime != "" {
		t.Errorf("全天事件不应有时间: %+v", allDay)
	}
}

func TestImportService_RoundTripWithExport(t *testing.T) {
	exporter, _ := setupTestExportService(t)
	f, err := exporter.Export(context.Background(), &dto.ExportRequest{Format: FormatICS, View: "grid", Month: "2024-05"})
	if err != nil {
		t.Fatalf("Export 应成功: %v", err)
	}

	target := newTestEnv(t)
	importer := NewImportService(target.repo, target.shifts, target.engine, time.UTC, target.logger)
	resp, err := importer.ImportICS(context.Background(), "riposo", f.Content)
	if err != nil {
		t.Fatalf("ImportICS 应成功: %v", err)
	}
	if resp.Created != 3 {
		t.Errorf("期望导入 3 个班次，实际 %+v", resp)
	}

	night, ok := shiftOnDate(target.stored(t), "2024-05-02")
	if !ok {
		t.Fatal("应导入 2024-05-02 的班次")
	}
	if night.Priority != model.PriorityHigh || !night.IsCompleted || night.ShiftChangeMemo != "scambio con Luca" {
		t.Errorf("X-TURNI 属性应还原字段: %+v", night)
	}
	if night.StartTime != "22:00" || night.EndTime != "06:00" {
		t.Errorf("跨夜时间应还原，实际 %s-%s", night.StartTime, night.EndTime)
	}
}

func TestImportService_Errors(t *testing.T) {
	svc, _ := setupTestImportService(t)
	ctx := context.Background()

	if _, err := svc.ImportICS(ctx, "inesistente", strings.NewReader(icsDoc())); !errors.Is(err, ErrShiftTypeNotFound) {
		t.Errorf("期望 ErrShiftTypeNotFound，实际: %v", err)
	}
	if _, err := svc.ImportICS(ctx, "mattina", strings.NewReader("non un calendario")); !errors.Is(err, ErrInvalidICS) {
		t.Errorf("期望 ErrInvalidICS，实际: %v", err)
	}
}

// ── 解析器 ──

func TestParseRRuleToRecurrence(t *testing.T) {
	start := time.Date(2024, 1, 31, 8, 0, 0, 0, time.UTC)
	cases := []struct {
		name  string
		rrule string
		want  *model.RecurrenceRule
	}{
		{"UNTIL", "FREQ=DAILY;INTERVAL=2;UNTIL=20240210T000000Z",
			&model.RecurrenceRule{Frequency: model.FrequencyDaily, Interval: 2, EndDate: "2024-02-10"}},
		{"COUNT 月末", "FREQ=MONTHLY;COUNT=3",
			&model.RecurrenceRule{Frequency: model.FrequencyMonthly, Interval: 1, EndDate: "2024-03-31"}},
		{"无结束条件", "FREQ=WEEKLY",
			&model.RecurrenceRule{Frequency: model.FrequencyWeekly, Interval: 1, EndDate: "2025-01-31"}},
		{"不支持的频率", "FREQ=YEARLY;COUNT=2", nil},
		{"COUNT 过大按上限截断", "FREQ=DAILY;COUNT=99999999999",
			&model.RecurrenceRule{Frequency: model.FrequencyDaily, Interval: 1, EndDate: "2034-02-06"}},
		{"INTERVAL 过大", "FREQ=DAILY;INTERVAL=4611686018427387904;COUNT=3", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := toRecurrenceRule(parseRRule(tc.rrule, time.UTC), start)
			if tc.want == nil {
				if got != nil {
					t.Errorf("期望 nil，实际 %+v", got)
				}
				return
			}
			if got == nil || *got != *tc.want {
				t.Errorf("期望 %+v，实际 %+v", tc.want, got)
			}
		})
	}
}

func TestParseICSDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"PT8H":      8 * time.Hour,
		"PT1H30M":   90 * time.Minute,
		"P1DT2H":    26 * time.Hour,
		"P1W":       7 * 24 * time.Hour,
		"+PT45M10S": 45*time.Minute + 10*time.Second,
	}
	for in, want := range cases {
		got, ok := parseICSDuration(in)
		if !ok || got != want {
			t.Errorf("parseICSDuration(%s) 期望 %v，实际 %v (%v)", in, want, got, ok)
		}
	}
	for _, bad := range []string{"", "P", "8H", "PT8X"} {
		if _, ok := parseICSDuration(bad); ok {
			t.Errorf("%q 应解析失败", bad)
		}
	}
}
