package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"

	"shift-calendar/backend/internal/dto"
	"shift-calendar/backend/internal/model"
)

// ── 测试辅助 ──

func setupTestExportService(t *testing.T) (ExportService, *testEnv) {
	env := newTestEnv(t)
	svc := NewExportService(env.repo, env.shifts, env.settings, time.UTC, env.logger)
	svc.(*exportService).now = fixedClock
	env.seed(t,
		model.ShiftInstance{ID: "a", Date: "2024-05-20", TypeID: "mattina", StartTime: "07:00", EndTime: "15:00", Priority: model.PriorityLow},
		model.ShiftInstance{ID: "b", Date: "2024-05-02", TypeID: "notte", StartTime: "22:00", EndTime: "06:00", Priority: model.PriorityHigh,
			IsCompleted: true, Notes: `reparto "B", piano 2`, ShiftChangeMemo: "scambio con Luca"},
		model.ShiftInstance{ID: "c", Date: "2024-06-03", TypeID: "ferie"},
		model.ShiftInstance{ID: "d", Date: "2024-05-09", TypeID: "cancellato"},
	)
	return svc, env
}

func csvLines(t *testing.T, f *ExportFile) []string {
	t.Helper()
	raw := f.Content.String()
	if !strings.HasSuffix(raw, "\r\n") {
		t.Fatalf("CSV 应以 CRLF 结尾: %q", raw)
	}
	return strings.Split(strings.TrimSuffix(raw, "\r\n"), "\r\n")
}

// ── CSV ──

func TestExportService_CSV_MonthView(t *testing.T) {
	svc, _ := setupTestExportService(t)

	f, err := svc.Export(context.Background(), &dto.ExportRequest{Format: FormatCSV, View: "grid", Month: "2024-05"})
	if err != nil {
		t.Fatalf("Export 应成功: %v", err)
	}
	if f.Filename != "turni.csv" || !strings.HasPrefix(f.ContentType, "text/csv") {
		t.Errorf("文件信息不正确: %s %s", f.Filename, f.ContentType)
	}

	lines := csvLines(t, f)
	wantHeader := "Data,Tipo di Turno,Priorità,Stato,Ora Inizio,Ora Fine,Note,Memo Cambio Turno"
	if lines[0] != wantHeader {
		t.Errorf("表头不正确\n期望 %s\n实际 %s", wantHeader, lines[0])
	}
	want := []string{
		`2024-05-02,Notte,Alta,Completato,22:00,06:00,"reparto ""B"", piano 2",scambio con Luca`,
		`2024-05-09,N/D,Bassa,Da Fare,,,,`,
		`2024-05-20,Mattina,Bassa,Da Fare,07:00,15:00,,`,
	}
	if len(lines) != len(want)+1 {
		t.Fatalf("期望 %d 行数据，实际 %v", len(want), lines[1:])
	}
	for i, w := range want {
		if lines[i+1] != w {
			t.Errorf("第 %d 行\n期望 %s\n实际 %s", i+1, w, lines[i+1])
		}
	}
}

func TestExportService_CSV_DefaultMonthIsCurrent(t *testing.T) {
	svc, _ := setupTestExportService(t)

	f, err := svc.Export(context.Background(), &dto.ExportRequest{Format: FormatCSV})
	if err != nil {
		t.Fatalf("Export 应成功: %v", err)
	}
	lines := csvLines(t, f)
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "2024-06-03,Ferie") {
		t.Errorf("未指定月份时应导出当前月（2024-06），实际 %v", lines)
	}
}

func TestExportService_CSV_ListViewEnglish(t *testing.T) {
	svc, env := setupTestExportService(t)
	lang := "en"
	if _, err := env.settings.Update(context.Background(), &dto.UpdateSettingsRequest{Language: &lang}); err != nil {
		t.Fatalf("更新语言失败: %v", err)
	}

	req := &dto.ExportRequest{
		ShiftListRequest: dto.ShiftListRequest{Sort: SortByPriority, Start: "2024-05-01", End: "2024-05-31"},
		Format:           FormatCSV,
		View:             "list",
	}
	f, err := svc.Export(context.Background(), req)
	if err != nil {
		t.Fatalf("Export 应成功: %v", err)
	}
	lines := csvLines(t, f)
	if lines[0] != "Date,Shift Type,Priority,Status,Start Time,End Time,Notes,Shift Change Memo" {
		t.Errorf("英文表头不正确: %s", lines[0])
	}
	// 按优先级升序：high 在前，其余按原顺序
	if len(lines) != 4 || !strings.HasPrefix(lines[1], "2024-05-02,Notte,High,Completed") {
		t.Errorf("列表导出顺序不正确: %v", lines)
	}
	if !strings.Contains(lines[3], "N/A") {
		t.Errorf("已删除类型应显示 N/A，实际 %s", lines[3])
	}
}

// ── XLSX ──

func TestExportService_XLSX(t *testing.T) {
	svc, _ := setupTestExportService(t)

	f, err := svc.Export(context.Background(), &dto.ExportRequest{Format: FormatXLSX, View: "grid", Month: "2024-05"})
	if err != nil {
		t.Fatalf("Export 应成功: %v", err)
	}
	if f.Filename != "turni.xlsx" {
		t.Errorf("期望 turni.xlsx，实际 %s", f.Filename)
	}

	book, err := excelize.OpenReader(f.Content)
	if err != nil {
		t.Fatalf("生成的文件应可被打开: %v", err)
	}
	defer book.Close()

	rows, err := book.GetRows("Turni")
	if err != nil {
		t.Fatalf("读取工作表失败: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("期望 1 行表头 + 3 行数据，实际 %d", len(rows))
	}
	if rows[0][0] != "Data" || rows[1][1] != "Notte" || rows[1][2] != "Alta" {
		t.Errorf("单元格内容不正确: %v", rows[:2])
	}
	if idx, _ := book.GetSheetIndex("Sheet1"); idx != -1 {
		t.Error("默认工作表应已删除")
	}
}

// ── ICS ──

func TestExportService_ICS(t *testing.T) {
	svc, _ := setupTestExportService(t)

	f, err := svc.Export(context.Background(), &dto.ExportRequest{Format: FormatICS, View: "grid", Month: "2024-05"})
	if err != nil {
		t.Fatalf("Export 应成功: %v", err)
	}
	if f.Filename != "turni.ics" || !strings.HasPrefix(f.ContentType, "text/calendar") {
		t.Errorf("文件信息不正确: %s %s", f.Filename, f.ContentType)
	}

	cal, err := ics.ParseCalendar(strings.NewReader(f.Content.String()))
	if err != nil {
		t.Fatalf("生成的日历应可解析: %v", err)
	}
	events := cal.Events()
	if len(events) != 3 {
		t.Fatalf("期望 3 个事件，实际 %d", len(events))
	}

	night := events[0]
	if got := night.GetProperty(ics.ComponentPropertyDtStart).Value; got != "20240502T220000Z" {
		t.Errorf("期望 DTSTART 20240502T220000Z，实际 %s", got)
	}
	// 结束时间早于开始时间视为跨夜
	if got := night.GetProperty(ics.ComponentPropertyDtEnd).Value; got != "20240503T060000Z" {
		t.Errorf("期望 DTEND 20240503T060000Z，实际 %s", got)
	}
	if got := night.GetProperty(icsPropPriority).Value; got != "high" {
		t.Errorf("期望 X-TURNI-PRIORITY=high，实际 %s", got)
	}

	allDay := events[1]
	if got := allDay.GetProperty(ics.ComponentPropertyDtStart).Value; got != "20240509" {
		t.Errorf("无时间的班次应为全天事件，实际 DTSTART=%s", got)
	}
}

func TestExportService_UnsupportedFormat(t *testing.T) {
	svc, _ := setupTestExportService(t)

	_, err := svc.Export(context.Background(), &dto.ExportRequest{Format: "pdf", View: "list"})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("期望 ErrUnsupportedFormat，实际: %v", err)
	}
}

func TestExportService_InvalidMonth(t *testing.T) {
	svc, _ := setupTestExportService(t)

	_, err := svc.Export(context.Background(), &dto.ExportRequest{Format: FormatCSV, View: "grid", Month: "2024-5"})
	if !errors.Is(err, ErrInvalidMonth) {
		t.Errorf("期望 ErrInvalidMonth，实际: %v", err)
	}
}
