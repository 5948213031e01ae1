package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"shift-calendar/backend/internal/model"
)

// ── 重复展开器 ──────────────────────────────────────────────
//
// 职责：按重复规则把班次模板展开为具体实例序列。纯函数，无 I/O，不修改入参。
//
// 约定：
//   - 第 k 次出现 = 起始日期 + k*interval 个周期（daily/weekly/monthly）
//   - monthly 目标月缺少起始日号时取该月最后一天（1/31 → 2/29 → 3/31 → 4/30）
//   - 结束日期含当天；起始日期晚于结束日期时返回空序列
//   - interval 不超过 MaxInterval，单个系列不超过 MaxOccurrences 个实例
//   - 展开结果一律未完成、无完成记录。新建系列的首个实例可预置为已完成，
//     该例外由系列变更引擎负责，不在这里处理
// ─────────────────────────────────────────────────────────────

const (
	// MaxInterval interval 上限
	MaxInterval = 999
	// MaxOccurrences 单个系列的实例上限（约十年的每日班次）
	MaxOccurrences = 3660
)

var (
	ErrInvalidRule = errors.New("无效的重复规则")
	ErrInvalidDate = errors.New("无效的日期")
)

// IDFunc 实例 id 生成器
type IDFunc func() string

// NewID 默认 id 生成器
func NewID() string {
	return uuid.NewString()
}

// Validate 校验规则本身：频率合法、1 ≤ interval ≤ MaxInterval、结束日期可解析
func Validate(rule model.RecurrenceRule) error {
	switch rule.Frequency {
	case model.FrequencyDaily, model.FrequencyWeekly, model.FrequencyMonthly:
	default:
		return fmt.Errorf("%w: 未知频率 %q", ErrInvalidRule, rule.Frequency)
	}
	if rule.Interval < 1 || rule.Interval > MaxInterval {
		return fmt.Errorf("%w: interval 必须在 1..%d 之间", ErrInvalidRule, MaxInterval)
	}
	if _, err := ParseDate(rule.EndDate); err != nil {
		return fmt.Errorf("%w: 结束日期 %q", ErrInvalidRule, rule.EndDate)
	}
	return nil
}

// Usable 判断规则能否从 startDate 起生成系列（规则合法且结束日期不早于起始日期）。
// 不可用的规则视为“未启用重复”，调用方回退到单个班次保存。
func Usable(rule *model.RecurrenceRule, startDate string) bool {
	if rule == nil || Validate(*rule) != nil {
		return false
	}
	start, err := ParseDate(startDate)
	if err != nil {
		return false
	}
	end, _ := ParseDate(rule.EndDate)
	return !start.After(end)
}

// Occurrence 计算第 k 次出现的日期（k 从 0 开始）。
// 调用方需保证 rule 已通过 Validate 且 k ≤ MaxOccurrences。
func Occurrence(start time.Time, rule model.RecurrenceRule, k int) time.Time {
	switch rule.Frequency {
	case model.FrequencyDaily:
		return start.AddDate(0, 0, k*rule.Interval)
	case model.FrequencyWeekly:
		return start.AddDate(0, 0, k*rule.Interval*7)
	default:
		return addMonthsClamped(start, k*rule.Interval)
	}
}

// Dates 返回系列的全部日期；实例数超过 MaxOccurrences 时返回 ErrInvalidRule
func Dates(rule model.RecurrenceRule, startDate string) ([]string, error) {
	if err := Validate(rule); err != nil {
		return nil, err
	}
	start, err := ParseDate(startDate)
	if err != nil {
		return nil, err
	}
	end, _ := ParseDate(rule.EndDate)

	dates := []string{}
	prev := start
	for k := 0; ; k++ {
		cur := Occurrence(start, rule, k)
		if cur.After(end) {
			return dates, nil
		}
		if k > 0 && !cur.After(prev) {
			return nil, fmt.Errorf("%w: 日期不再递增", ErrInvalidRule)
		}
		if k == MaxOccurrences {
			return nil, fmt.Errorf("%w: 实例数超过 %d", ErrInvalidRule, MaxOccurrences)
		}
		dates = append(dates, FormatDate(cur))
		prev = cur
	}
}

// Expander 重复展开器
type Expander struct {
	newID IDFunc
}

// NewExpander 创建展开器；newID 为 nil 时使用 uuid
func NewExpander(newID IDFunc) *Expander {
	if newID == nil {
		newID = NewID
	}
	return &Expander{newID: newID}
}

// Expand 展开系列
//
// template 提供除 id/date/完成状态以外的全部字段，其 RecurrenceID 由调用方预先设置。
// 每个实例获得新 id、独立的规则拷贝、originalDate = startDate。
func (e *Expander) Expand(template model.ShiftInstance, rule model.RecurrenceRule, startDate string) ([]model.ShiftInstance, error) {
	dates, err := Dates(rule, startDate)
	if err != nil {
		return nil, err
	}

	out := make([]model.ShiftInstance, 0, len(dates))
	for _, d := range dates {
		inst := template.Clone()
		r := rule
		inst.ID = e.newID()
		inst.Date = d
		inst.RecurrenceRule = &r
		inst.OriginalDate = startDate
		inst.IsCompleted = false
		inst.CompletionHistory = nil
		out = append(out, inst)
	}
	return out, nil
}
