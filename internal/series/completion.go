package series

import "shift-calendar/backend/internal/model"

// ToggleCompletion 翻转完成标记并追加一条记录，返回新实例
func (e *Engine) ToggleCompletion(inst model.ShiftInstance) model.ShiftInstance {
	out := inst.Clone()
	out.IsCompleted = !inst.IsCompleted
	out.CompletionHistory = e.transition(inst.CompletionHistory, inst.IsCompleted, out.IsCompleted)
	return out
}

// Toggle 在集合中翻转 id 对应实例的完成标记
func (e *Engine) Toggle(shifts []model.ShiftInstance, id string) (*Result, error) {
	out := model.CloneShifts(shifts)
	for i := range out {
		if out[i].ID == id {
			out[i] = e.ToggleCompletion(out[i])
			return &Result{Shifts: out, Changed: []model.ShiftInstance{out[i]}}, nil
		}
	}
	return nil, ErrShiftNotFound
}

// transition 完成状态变化时在历史末尾追加一条记录；未变化时原样复制。
// 新实例按 was=false 处理：以已完成状态创建时得到一条 completed 记录。
func (e *Engine) transition(history []model.CompletionEntry, was, now bool) []model.CompletionEntry {
	out := append([]model.CompletionEntry(nil), history...)
	if was == now {
		return out
	}
	return append(out, model.CompletionEntry{
		Status:    model.StatusOf(now),
		Timestamp: e.now().UTC(),
	})
}
