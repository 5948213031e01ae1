package series

import "shift-calendar/backend/internal/model"

// Find 按 id 查找实例
func Find(shifts []model.ShiftInstance, id string) (model.ShiftInstance, bool) {
	for _, s := range shifts {
		if s.ID == id {
			return s, true
		}
	}
	return model.ShiftInstance{}, false
}

// Members 返回 recurrenceID 对应系列的全部成员（保持集合原顺序）
func Members(shifts []model.ShiftInstance, recurrenceID string) []model.ShiftInstance {
	if recurrenceID == "" {
		return nil
	}
	var out []model.ShiftInstance
	for _, s := range shifts {
		if s.RecurrenceID == recurrenceID {
			out = append(out, s)
		}
	}
	return out
}

// SeriesStart 推断系列起始日期。
//
// 依次取：id 等于系列 id 的主实例的 originalDate、首个带 originalDate 的成员、
// 成员中最早的日期，最后回退到 fallback。
func SeriesStart(members []model.ShiftInstance, fallback string) string {
	for _, m := range members {
		if m.ID == m.RecurrenceID && m.OriginalDate != "" {
			return m.OriginalDate
		}
	}
	for _, m := range members {
		if m.OriginalDate != "" {
			return m.OriginalDate
		}
	}
	earliest := ""
	for _, m := range members {
		if earliest == "" || m.Date < earliest {
			earliest = m.Date
		}
	}
	if earliest != "" {
		return earliest
	}
	return fallback
}
