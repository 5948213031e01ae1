package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"shift-calendar/backend/internal/dto"
	"shift-calendar/backend/internal/model"
	"shift-calendar/backend/internal/repository"
)

var ErrInvalidMonth = errors.New("月份格式应为 YYYY-MM")

// 列表排序
const (
	SortByDate     = "date"
	SortByPriority = "priority"
)

// listQuery 列表视图的完整查询条件
type listQuery struct {
	types   []string
	filters model.ListFilters
	sortKey string
	desc    bool
}

// shiftQuery 日视图/月视图/列表视图的共享查询逻辑（班次服务与导出共用）
type shiftQuery struct {
	store    *ShiftStore
	types    repository.ShiftTypeRepository
	settings SettingsService
}

// resolveList 以已保存的设置为基础，用请求中给出的条件覆盖
func (q *shiftQuery) resolveList(req *dto.ShiftListRequest) listQuery {
	saved := q.settings.Current()
	lq := listQuery{
		types:   saved.ActiveFilters,
		filters: saved.ListFilters,
		sortKey: SortByDate,
	}
	if req == nil {
		return lq
	}
	if len(req.Types) > 0 {
		lq.types = req.Types
	}
	if req.Start != "" {
		lq.filters.DateRange.Start = req.Start
	}
	if req.End != "" {
		lq.filters.DateRange.End = req.End
	}
	if len(req.Priorities) > 0 {
		lq.filters.Priorities = make([]model.Priority, 0, len(req.Priorities))
		for _, p := range req.Priorities {
			lq.filters.Priorities = append(lq.filters.Priorities, model.Priority(p))
		}
	}
	if req.Status != "" {
		lq.filters.Status = req.Status
	}
	if req.Sort != "" {
		lq.sortKey = req.Sort
	}
	lq.desc = req.Order == "desc"
	return lq
}

// listView 返回列表视图数据集与类型索引
func (q *shiftQuery) listView(ctx context.Context, req *dto.ShiftListRequest) ([]model.ShiftInstance, map[string]model.ShiftType, error) {
	shifts, types, err := q.load(ctx)
	if err != nil {
		return nil, nil, err
	}
	lq := q.resolveList(req)
	result := filterByTypes(shifts, lq.types, len(types))
	result = applyListFilters(result, lq.filters)
	sortShifts(result, lq.sortKey, lq.desc)
	return result, model.ShiftTypeIndex(types), nil
}

// monthView 返回月视图数据集（按日期升序）
func (q *shiftQuery) monthView(ctx context.Context, month string, typeIDs []string) ([]model.ShiftInstance, map[string]model.ShiftType, error) {
	if _, err := time.Parse("2006-01", month); err != nil {
		return nil, nil, ErrInvalidMonth
	}
	shifts, types, err := q.load(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(typeIDs) == 0 {
		typeIDs = q.settings.Current().ActiveFilters
	}
	var result []model.ShiftInstance
	for _, s := range filterByTypes(shifts, typeIDs, len(types)) {
		if strings.HasPrefix(s.Date, month+"-") {
			result = append(result, s)
		}
	}
	sortShifts(result, SortByDate, false)
	return result, model.ShiftTypeIndex(types), nil
}

// dayView 返回某一天的班次（按类型过滤）
func (q *shiftQuery) dayView(ctx context.Context, date string) ([]model.ShiftInstance, map[string]model.ShiftType, error) {
	shifts, types, err := q.load(ctx)
	if err != nil {
		return nil, nil, err
	}
	var result []model.ShiftInstance
	for _, s := range filterByTypes(shifts, q.settings.Current().ActiveFilters, len(types)) {
		if s.Date == date {
			result = append(result, s)
		}
	}
	return result, model.ShiftTypeIndex(types), nil
}

func (q *shiftQuery) load(ctx context.Context) ([]model.ShiftInstance, []model.ShiftType, error) {
	shifts, err := q.store.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	types, err := q.types.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	return shifts, types, nil
}

// ── 纯函数 ──

// filterByTypes 仅保留类型在 active 中的班次。
// active 覆盖全部类型时不做过滤，已删除类型的班次也会保留。
func filterByTypes(shifts []model.ShiftInstance, active []string, typeCount int) []model.ShiftInstance {
	if len(active) == typeCount {
		return append([]model.ShiftInstance(nil), shifts...)
	}
	set := make(map[string]bool, len(active))
	for _, id := range active {
		set[id] = true
	}
	var out []model.ShiftInstance
	for _, s := range shifts {
		if set[s.TypeID] {
			out = append(out, s)
		}
	}
	return out
}

// applyListFilters 状态、优先级、日期范围过滤。
// 优先级过滤只匹配显式设置了优先级的班次。
func applyListFilters(shifts []model.ShiftInstance, f model.ListFilters) []model.ShiftInstance {
	prio := make(map[model.Priority]bool, len(f.Priorities))
	for _, p := range f.Priorities {
		prio[p] = true
	}
	var out []model.ShiftInstance
	for _, s := range shifts {
		switch f.Status {
		case "completed":
			if !s.IsCompleted {
				continue
			}
		case "incomplete":
			if s.IsCompleted {
				continue
			}
		}
		if len(prio) > 0 && (s.Priority == "" || !prio[s.Priority]) {
			continue
		}
		if f.DateRange.Start != "" && s.Date < f.DateRange.Start {
			continue
		}
		if f.DateRange.End != "" && s.Date > f.DateRange.End {
			continue
		}
		out = append(out, s)
	}
	return out
}

// sortShifts 稳定排序。按优先级排序时“升序”指高优先级在前，缺省优先级按 low 计。
func sortShifts(shifts []model.ShiftInstance, key string, desc bool) {
	less := func(a, b model.ShiftInstance) bool { return a.Date < b.Date }
	if key == SortByPriority {
		less = func(a, b model.ShiftInstance) bool { return a.Priority.Rank() > b.Priority.Rank() }
	}
	sort.SliceStable(shifts, func(i, j int) bool {
		if desc {
			return less(shifts[j], shifts[i])
		}
		return less(shifts[i], shifts[j])
	})
}
