package series

import (
	"errors"
	"fmt"
	"time"

	"shift-calendar/backend/internal/model"
	"shift-calendar/backend/internal/recurrence"
)

// ── 系列变更引擎 ──────────────────────────────────────────────
//
// 职责：在内存中的完整班次集合上计算新增/编辑/删除后的替换集合。
// 所有操作只读入参、返回新集合，由调用方整体替换存储。
//
// 作用范围：
//   - thisInstanceOnly       仅当前实例，并脱离系列
//   - thisAndFutureInstances 当前及之后的实例；更早实例的规则结束日期截断到前一天
//   - allInstances           系列全部实例
// ─────────────────────────────────────────────────────────────

// Scope 系列操作范围
type Scope string

const (
	ScopeThisInstance  Scope = "thisInstanceOnly"
	ScopeThisAndFuture Scope = "thisAndFutureInstances"
	ScopeAll           Scope = "allInstances"
)

// Valid 判断范围取值是否合法
func (s Scope) Valid() bool {
	switch s {
	case ScopeThisInstance, ScopeThisAndFuture, ScopeAll:
		return true
	}
	return false
}

var (
	ErrShiftNotFound = errors.New("班次不存在")
	ErrNotInSeries   = errors.New("班次不属于重复系列")
	ErrInvalidScope  = errors.New("无效的系列操作范围")
	ErrInvalidDraft  = errors.New("班次数据不完整")
)

// Draft 表单提交的班次字段。Recurrence 为 nil 或不可用时视为未启用重复。
type Draft struct {
	Date             string
	TypeID           string
	StartTime        string
	EndTime          string
	Notes            string
	ShiftChangeMemo  string
	Documents        []model.Document
	Priority         model.Priority
	IsCompleted      bool
	ReminderDateTime *time.Time
	Recurrence       *model.RecurrenceRule
}

// Result 一次变更的结果
type Result struct {
	Shifts  []model.ShiftInstance // 替换后的完整集合
	Changed []model.ShiftInstance // 新增或更新的实例
	Removed []string              // 被移除的实例 id
}

// Engine 系列变更引擎
type Engine struct {
	expander *recurrence.Expander
	newID    recurrence.IDFunc
	now      func() time.Time
}

// Option 引擎选项
type Option func(*Engine)

// WithClock 注入时钟（完成记录时间戳）
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDFunc 注入 id 生成器（实例 id 与系列 id 共用）
func WithIDFunc(f recurrence.IDFunc) Option {
	return func(e *Engine) { e.newID = f }
}

// NewEngine 创建引擎
func NewEngine(opts ...Option) *Engine {
	e := &Engine{newID: recurrence.NewID, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	e.expander = recurrence.NewExpander(e.newID)
	return e
}

// ════════════════════════════════════════════════════════════
// Save：新建或保存单个班次 / 新建系列
// ════════════════════════════════════════════════════════════

// Save 保存表单。
//
// editing 为正在编辑的已存实例（新建时为 nil）。
//   - 重复可用：生成新系列，移除 editing 以及生成日期上的独立班次，首个实例取表单完成状态
//   - 否则：按 id 更新或插入单个班次；原属系列的实例脱离系列
func (e *Engine) Save(shifts []model.ShiftInstance, editing *model.ShiftInstance, d Draft) (*Result, error) {
	if err := validateDraft(d); err != nil {
		return nil, err
	}

	if recurrence.Usable(d.Recurrence, d.Date) {
		return e.createSeries(shifts, editing, d)
	}

	var inst model.ShiftInstance
	if editing != nil {
		inst = e.applyDraft(*editing, d)
	} else {
		inst = e.applyDraft(model.ShiftInstance{ID: e.newID()}, d)
	}
	inst.Date = d.Date
	inst.Detach()

	out := model.CloneShifts(shifts)
	replaced := false
	for i := range out {
		if out[i].ID == inst.ID {
			out[i] = inst
			replaced = true
			break
		}
	}
	if !replaced {
		out = append(out, inst)
	}
	return &Result{Shifts: out, Changed: []model.ShiftInstance{inst}}, nil
}

func (e *Engine) createSeries(shifts []model.ShiftInstance, editing *model.ShiftInstance, d Draft) (*Result, error) {
	tmpl := e.applyDraft(model.ShiftInstance{}, Draft{
		TypeID:           d.TypeID,
		StartTime:        d.StartTime,
		EndTime:          d.EndTime,
		Notes:            d.Notes,
		ShiftChangeMemo:  d.ShiftChangeMemo,
		Documents:        d.Documents,
		Priority:         d.Priority,
		ReminderDateTime: d.ReminderDateTime,
	})
	tmpl.RecurrenceID = e.newID()

	generated, err := e.expander.Expand(tmpl, *d.Recurrence, d.Date)
	if err != nil {
		return nil, fmt.Errorf("展开重复系列失败: %w", err)
	}
	// 新建系列的首个实例可预置为表单中的完成状态
	if len(generated) > 0 && d.IsCompleted {
		generated[0].IsCompleted = true
		generated[0].CompletionHistory = e.transition(nil, false, true)
	}

	skip := map[string]bool{}
	if editing != nil {
		skip[editing.ID] = true
	}
	return e.install(shifts, skip, generated), nil
}

// ════════════════════════════════════════════════════════════
// Edit：按范围编辑系列成员
// ════════════════════════════════════════════════════════════

// Edit 编辑系列成员 targetID
func (e *Engine) Edit(shifts []model.ShiftInstance, targetID string, d Draft, scope Scope) (*Result, error) {
	target, err := findMember(shifts, targetID)
	if err != nil {
		return nil, err
	}
	if !scope.Valid() {
		return nil, ErrInvalidScope
	}
	if d.TypeID == "" {
		return nil, fmt.Errorf("%w: 缺少班次类型", ErrInvalidDraft)
	}

	if scope == ScopeThisInstance {
		updated := e.applyDraft(target, d)
		if d.Date != "" {
			if _, err := recurrence.ParseDate(d.Date); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidDraft, err)
			}
			updated.Date = d.Date
		}
		updated.Detach()
		out := model.CloneShifts(shifts)
		for i := range out {
			if out[i].ID == target.ID {
				out[i] = updated
			}
		}
		return &Result{Shifts: out, Changed: []model.ShiftInstance{updated}}, nil
	}

	members := Members(shifts, target.RecurrenceID)
	affected := affectedMembers(members, target.Date, scope)
	skip := idSet(affected)

	base := withoutIDs(shifts, skip)
	if scope == ScopeThisAndFuture {
		if base, err = truncateBefore(base, target.RecurrenceID, target.Date); err != nil {
			return nil, err
		}
	}

	start := target.Date
	if scope == ScopeAll {
		start = SeriesStart(members, target.Date)
	}

	if recurrence.Usable(d.Recurrence, start) {
		tmpl := e.applyDraft(target, d)
		tmpl.RecurrenceID = e.newID()
		generated, err := e.expander.Expand(tmpl, *d.Recurrence, start)
		if err != nil {
			return nil, fmt.Errorf("展开重复系列失败: %w", err)
		}
		res := e.install(base, nil, generated)
		res.Removed = append(ids(affected), res.Removed...)
		return res, nil
	}

	// 不再重复：受影响实例逐个应用表单字段并转为独立班次
	changed := make([]model.ShiftInstance, 0, len(affected))
	for _, a := range affected {
		inst := e.applyDraft(a, d)
		inst.Detach()
		changed = append(changed, inst)
	}
	return &Result{Shifts: append(base, changed...), Changed: changed}, nil
}

// ════════════════════════════════════════════════════════════
// Delete：按范围删除
// ════════════════════════════════════════════════════════════

// Delete 删除 targetID。非系列班次忽略 scope，仅删除自身。
func (e *Engine) Delete(shifts []model.ShiftInstance, targetID string, scope Scope) (*Result, error) {
	target, ok := Find(shifts, targetID)
	if !ok {
		return nil, ErrShiftNotFound
	}
	if !target.InSeries() || scope == ScopeThisInstance {
		return &Result{Shifts: withoutIDs(shifts, map[string]bool{targetID: true}), Removed: []string{targetID}}, nil
	}
	if !scope.Valid() {
		return nil, ErrInvalidScope
	}

	affected := affectedMembers(Members(shifts, target.RecurrenceID), target.Date, scope)
	out := withoutIDs(shifts, idSet(affected))
	if scope == ScopeThisAndFuture {
		var err error
		if out, err = truncateBefore(out, target.RecurrenceID, target.Date); err != nil {
			return nil, err
		}
	}
	return &Result{Shifts: out, Removed: ids(affected)}, nil
}

// ── 内部辅助 ──

// install 移除 skip 中的实例与生成日期上的独立班次，再追加生成的系列
func (e *Engine) install(shifts []model.ShiftInstance, skip map[string]bool, generated []model.ShiftInstance) *Result {
	dates := make(map[string]bool, len(generated))
	for _, g := range generated {
		dates[g.Date] = true
	}

	out := make([]model.ShiftInstance, 0, len(shifts)+len(generated))
	var removed []string
	for _, s := range shifts {
		if skip[s.ID] || (!s.InSeries() && dates[s.Date]) {
			removed = append(removed, s.ID)
			continue
		}
		out = append(out, s.Clone())
	}
	out = append(out, generated...)
	return &Result{Shifts: out, Changed: generated, Removed: removed}
}

// applyDraft 将表单字段套用到 base 的拷贝上，完成状态变化时追加一条记录。
// 不修改日期与系列字段。
func (e *Engine) applyDraft(base model.ShiftInstance, d Draft) model.ShiftInstance {
	out := base.Clone()
	out.TypeID = d.TypeID
	out.StartTime = d.StartTime
	out.EndTime = d.EndTime
	out.Notes = d.Notes
	out.ShiftChangeMemo = d.ShiftChangeMemo
	out.Documents = append([]model.Document(nil), d.Documents...)
	out.Priority = d.Priority
	if d.ReminderDateTime != nil {
		t := *d.ReminderDateTime
		out.ReminderDateTime = &t
	} else {
		out.ReminderDateTime = nil
	}
	out.CompletionHistory = e.transition(base.CompletionHistory, base.IsCompleted, d.IsCompleted)
	out.IsCompleted = d.IsCompleted
	return out
}

func validateDraft(d Draft) error {
	if d.TypeID == "" {
		return fmt.Errorf("%w: 缺少班次类型", ErrInvalidDraft)
	}
	if _, err := recurrence.ParseDate(d.Date); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDraft, err)
	}
	return nil
}

func findMember(shifts []model.ShiftInstance, id string) (model.ShiftInstance, error) {
	target, ok := Find(shifts, id)
	if !ok {
		return model.ShiftInstance{}, ErrShiftNotFound
	}
	if !target.InSeries() {
		return model.ShiftInstance{}, ErrNotInSeries
	}
	return target, nil
}

func affectedMembers(members []model.ShiftInstance, fromDate string, scope Scope) []model.ShiftInstance {
	if scope == ScopeAll {
		return members
	}
	var out []model.ShiftInstance
	for _, m := range members {
		if m.Date >= fromDate {
			out = append(out, m)
		}
	}
	return out
}

// truncateBefore 将系列中早于 splitDate 的实例的规则结束日期改为 splitDate 前一天。
// 没有规则拷贝的实例保持原样。
func truncateBefore(shifts []model.ShiftInstance, recurrenceID, splitDate string) ([]model.ShiftInstance, error) {
	dayBefore, err := recurrence.DayBefore(splitDate)
	if err != nil {
		return nil, err
	}
	for i := range shifts {
		s := &shifts[i]
		if s.RecurrenceID != recurrenceID || s.Date >= splitDate || s.RecurrenceRule == nil {
			continue
		}
		r := *s.RecurrenceRule
		r.EndDate = dayBefore
		s.RecurrenceRule = &r
	}
	return shifts, nil
}

func withoutIDs(shifts []model.ShiftInstance, skip map[string]bool) []model.ShiftInstance {
	out := make([]model.ShiftInstance, 0, len(shifts))
	for _, s := range shifts {
		if skip[s.ID] {
			continue
		}
		out = append(out, s.Clone())
	}
	return out
}

func idSet(shifts []model.ShiftInstance) map[string]bool {
	set := make(map[string]bool, len(shifts))
	for _, s := range shifts {
		set[s.ID] = true
	}
	return set
}

func ids(shifts []model.ShiftInstance) []string {
	out := make([]string, 0, len(shifts))
	for _, s := range shifts {
		out = append(out, s.ID)
	}
	return out
}
