package model

// ShiftType 用户自定义的班次类型。实例按 id 弱引用，删除类型不会级联删除班次。
type ShiftType struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// DefaultShiftTypes 首次启动时的内置班次类型
func DefaultShiftTypes() []ShiftType {
	return []ShiftType{
		{ID: "mattina", Name: "Mattina", Color: "#4CAF50", Icon: "☀️"},
		{ID: "pomeriggio", Name: "Pomeriggio", Color: "#FFC107", Icon: "🌇"},
		{ID: "notte", Name: "Notte", Color: "#2196F3", Icon: "🌙"},
		{ID: "riposo", Name: "Riposo", Color: "#F44336", Icon: "☕"},
		{ID: "ferie", Name: "Ferie", Color: "#9C27B0", Icon: "✈️"},
	}
}

// AvailableIcons 类型图标可选集合
var AvailableIcons = []string{"☀️", "🌇", "🌙", "☕", "✈️", "🏥", "🏠", "💻", "📞", "🛠️", "⚙️", "💡", "🔥", "💧", "🌍", "❤️"}

// ShiftTypeIndex 按 id 建立类型索引
func ShiftTypeIndex(types []ShiftType) map[string]ShiftType {
	idx := make(map[string]ShiftType, len(types))
	for _, t := range types {
		idx[t.ID] = t
	}
	return idx
}
