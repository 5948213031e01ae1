package series

import "shift-calendar/backend/internal/model"

// IsDuplicate 检查是否已存在日期、类型、起止时间完全相同的班次（排除 excludeID 自身）。
//
// 只比较同类型；同一天不同类型的重叠不视为重复。重复保存路径不做此检查，
// 生成日期上的独立班次由系列安装时直接替换。
func IsDuplicate(shifts []model.ShiftInstance, date, typeID, startTime, endTime, excludeID string) bool {
	for _, s := range shifts {
		if s.ID == excludeID {
			continue
		}
		if s.Date == date && s.TypeID == typeID && s.StartTime == startTime && s.EndTime == endTime {
			return true
		}
	}
	return false
}
