package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"shift-calendar/backend/internal/dto"
	"shift-calendar/backend/internal/model"
	"shift-calendar/backend/internal/recurrence"
	"shift-calendar/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成导出文件失败")
	ErrUnsupportedFormat  = errors.New("不支持的导出格式")
)

// 导出格式
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatICS  = "ics"
)

// 自定义 ICS 属性，导入时据此还原班次字段
const (
	icsPropPriority     = ics.ComponentProperty("X-TURNI-PRIORITY")
	icsPropCompleted    = ics.ComponentProperty("X-TURNI-COMPLETED")
	icsPropRecurrenceID = ics.ComponentProperty("X-TURNI-RECURRENCE-ID")
	icsPropMemo         = ics.ComponentProperty("X-TURNI-SHIFT-CHANGE-MEMO")
)

// ExportFile 导出结果
type ExportFile struct {
	Content     *bytes.Buffer
	Filename    string
	ContentType string
}

// ExportService 导出业务接口
//
// 数据集：
//   - view=list 列表视图（类型过滤 + 列表过滤 + 排序）
//   - view=grid 指定月份的月视图（类型过滤，按日期升序）
//
// 未指定 view 时取已保存的视图模式；未指定月份时取当前月份。
type ExportService interface {
	Export(ctx context.Context, req *dto.ExportRequest) (*ExportFile, error)
}

type exportService struct {
	query    *shiftQuery
	settings SettingsService
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewExportService 创建 ExportService 实例。loc 为班次时间所在时区。
func NewExportService(repo *repository.Repository, store *ShiftStore, settings SettingsService, loc *time.Location, logger *zap.Logger) ExportService {
	return &exportService{
		query:    &shiftQuery{store: store, types: repo.ShiftType, settings: settings},
		settings: settings,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}

// ═══════════════════════════════════════════════════════════
// Export
// ═══════════════════════════════════════════════════════════

func (s *exportService) Export(ctx context.Context, req *dto.ExportRequest) (*ExportFile, error) {
	current := s.settings.Current()
	view := req.View
	if view == "" {
		view = current.ViewMode
	}

	var (
		shifts []model.ShiftInstance
		types  map[string]model.ShiftType
		err    error
	)
	if view == "list" {
		shifts, types, err = s.query.listView(ctx, &req.ShiftListRequest)
	} else {
		month := req.Month
		if month == "" {
			month = s.now().In(s.loc).Format("2006-01")
		}
		shifts, types, err = s.query.monthView(ctx, month, req.Types)
	}
	if err != nil {
		if !errors.Is(err, ErrInvalidMonth) {
			s.logger.Error("查询导出数据失败", zap.Error(err))
		}
		return nil, err
	}

	l := labelsFor(current.Language)
	var file *ExportFile
	switch req.Format {
	case FormatCSV:
		file, err = s.writeCSV(shifts, types, l)
	case FormatXLSX:
		file, err = s.writeXLSX(shifts, types, l)
	case FormatICS:
		file, err = s.writeICS(shifts, types, l)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		s.logger.Error("生成导出文件失败", zap.String("format", req.Format), zap.Error(err))
		return nil, ErrExportGenerateFail
	}

	s.logger.Info("导出完成",
		zap.String("format", req.Format),
		zap.String("view", view),
		zap.Int("rows", len(shifts)),
	)
	return file, nil
}

// ── 表格行 ──

func exportRow(s model.ShiftInstance, types map[string]model.ShiftType, l labels) []string {
	typeName := l.NotAvailable
	if t, ok := types[s.TypeID]; ok {
		typeName = t.Name
	}
	return []string{
		s.Date,
		typeName,
		l.priority(s.Priority),
		l.status(s.IsCompleted),
		s.StartTime,
		s.EndTime,
		s.Notes,
		s.ShiftChangeMemo,
	}
}

// ────────────────────── CSV ──────────────────────

func (s *exportService) writeCSV(shifts []model.ShiftInstance, types map[string]model.ShiftType, l labels) (*ExportFile, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	w.UseCRLF = true

	if err := w.Write(l.headers()); err != nil {
		return nil, err
	}
	for _, sh := range shifts {
		if err := w.Write(exportRow(sh, types, l)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return &ExportFile{Content: buf, Filename: "turni.csv", ContentType: "text/csv; charset=utf-8"}, nil
}

// ────────────────────── XLSX ──────────────────────

func (s *exportService) writeXLSX(shifts []model.ShiftInstance, types map[string]model.ShiftType, l labels) (*ExportFile, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := l.SheetName
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	_ = f.DeleteSheet("Sheet1")

	headers := l.headers()
	widths := []float64{12, 18, 10, 14, 10, 10, 40, 40}
	for i, w := range widths {
		col := colName(i)
		_ = f.SetColWidth(sheet, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4A90E2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	wrapStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})

	// 表头
	for i, h := range headers {
		_ = f.SetCellValue(sheet, cell(colName(i), 1), h)
	}
	_ = f.SetCellStyle(sheet, "A1", cell(colName(len(headers)-1), 1), headerStyle)

	// 数据行；类型列填充类型颜色
	row := 2
	for _, sh := range shifts {
		for i, v := range exportRow(sh, types, l) {
			_ = f.SetCellValue(sheet, cell(colName(i), row), v)
		}
		if t, ok := types[sh.TypeID]; ok && t.Color != "" {
			if st, err := f.NewStyle(&excelize.Style{
				Fill: excelize.Fill{Type: "pattern", Color: []string{t.Color}, Pattern: 1},
			}); err == nil {
				_ = f.SetCellStyle(sheet, cell("B", row), cell("B", row), st)
			}
		}
		row++
	}
	if row > 2 {
		_ = f.SetCellStyle(sheet, cell("G", 2), cell("H", row-1), wrapStyle)
	}
	_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return &ExportFile{
		Content:     buf,
		Filename:    "turni.xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}, nil
}

// ────────────────────── ICS ──────────────────────

// writeICS 每个班次实例输出一个 VEVENT。
// 有起始时间的为定时事件（结束早于开始视为跨夜），否则为全天事件。
func (s *exportService) writeICS(shifts []model.ShiftInstance, types map[string]model.ShiftType, l labels) (*ExportFile, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//shift-calendar//turni//" + strings.ToUpper(l.code))

	stamp := s.now().UTC()
	for _, sh := range shifts {
		e := cal.AddEvent(sh.ID + "@shift-calendar")
		e.SetDtStampTime(stamp)

		name := l.NotAvailable
		if t, ok := types[sh.TypeID]; ok {
			name = t.Name
		}
		e.SetSummary(name)
		if sh.Notes != "" {
			e.SetDescription(sh.Notes)
		}

		if err := s.setEventTimes(e, sh); err != nil {
			return nil, err
		}

		e.SetProperty(icsPropPriority, string(sh.EffectivePriority()))
		e.SetProperty(icsPropCompleted, fmt.Sprintf("%t", sh.IsCompleted))
		if sh.ShiftChangeMemo != "" {
			e.SetProperty(icsPropMemo, sh.ShiftChangeMemo)
		}
		if sh.RecurrenceID != "" {
			e.SetProperty(icsPropRecurrenceID, sh.RecurrenceID)
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	return &ExportFile{Content: buf, Filename: "turni.ics", ContentType: "text/calendar; charset=utf-8"}, nil
}

func (s *exportService) setEventTimes(e *ics.VEvent, sh model.ShiftInstance) error {
	day, err := recurrence.ParseDate(sh.Date)
	if err != nil {
		return err
	}
	if sh.StartTime == "" {
		e.SetAllDayStartAt(day)
		e.SetAllDayEndAt(day.AddDate(0, 0, 1))
		return nil
	}

	start, err := time.ParseInLocation("2006-01-02 15:04", sh.Date+" "+sh.StartTime, s.loc)
	if err != nil {
		return err
	}
	end := start
	if sh.EndTime != "" {
		if end, err = time.ParseInLocation("2006-01-02 15:04", sh.Date+" "+sh.EndTime, s.loc); err != nil {
			return err
		}
		if !end.After(start) {
			end = end.AddDate(0, 0, 1)
		}
	}
	e.SetStartAt(start)
	e.SetEndAt(end)
	return nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
