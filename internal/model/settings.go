package model

// ── 应用设置（存储于独立槽位，启动时一次性加载） ──

// 设置槽位名称，与客户端本地存储键一致
const (
	SlotShifts        = "shifts"
	SlotShiftTypes    = "shiftTypes"
	SlotViewMode      = "viewMode"
	SlotWeekStartsOn  = "weekStartsOn"
	SlotTheme         = "theme"
	SlotFontFamily    = "fontFamily"
	SlotLanguage      = "language"
	SlotCustomThemes  = "customThemes"
	SlotActiveFilters = "activeFilters"
	SlotListFilters   = "listFilters"
)

// ThemeColors 主题调色板
type ThemeColors struct {
	PrimaryColor     string `json:"primaryColor"`
	SecondaryColor   string `json:"secondaryColor"`
	DangerColor      string `json:"dangerColor"`
	TextColor        string `json:"textColor"`
	BgColor          string `json:"bgColor"`
	BgSecondaryColor string `json:"bgSecondaryColor"`
	BorderColor      string `json:"borderColor"`
	HeaderBg         string `json:"headerBg"`
	InputBg          string `json:"inputBg"`
	InputBorder      string `json:"inputBorder"`
	ModalBg          string `json:"modalBg"`
}

// CustomThemes 亮色/暗色两套调色板
type CustomThemes struct {
	Light ThemeColors `json:"light"`
	Dark  ThemeColors `json:"dark"`
}

// DateRange 列表视图日期过滤（空字符串表示不限）
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ListFilters 列表视图过滤条件
type ListFilters struct {
	DateRange  DateRange  `json:"dateRange"`
	Priorities []Priority `json:"priorities"`
	Status     string     `json:"status"` // all | completed | incomplete
}

// Active 是否有任一过滤条件生效
func (f ListFilters) Active() bool {
	return f.DateRange.Start != "" || f.DateRange.End != "" ||
		len(f.Priorities) > 0 || (f.Status != "" && f.Status != "all")
}

// Settings 强类型的应用设置
type Settings struct {
	ViewMode      string       `json:"viewMode"`     // grid | list
	WeekStartsOn  string       `json:"weekStartsOn"` // monday | sunday
	Theme         string       `json:"theme"`        // light | dark
	FontFamily    string       `json:"fontFamily"`
	Language      string       `json:"language"` // it | en
	CustomThemes  CustomThemes `json:"customThemes"`
	ActiveFilters []string     `json:"activeFilters"` // 参与显示的班次类型 id
	ListFilters   ListFilters  `json:"listFilters"`
}

// DefaultThemes 内置调色板
func DefaultThemes() CustomThemes {
	return CustomThemes{
		Light: ThemeColors{
			PrimaryColor:     "#4a90e2",
			SecondaryColor:   "#f5a623",
			DangerColor:      "#d0021b",
			TextColor:        "#333",
			BgColor:          "#ffffff",
			BgSecondaryColor: "#f8f9fa",
			BorderColor:      "#dee2e6",
			HeaderBg:         "#f8f9fa",
			InputBg:          "#fff",
			InputBorder:      "#ccc",
			ModalBg:          "#fff",
		},
		Dark: ThemeColors{
			PrimaryColor:     "#4a90e2",
			SecondaryColor:   "#f5a623",
			DangerColor:      "#e03144",
			TextColor:        "#f8f9fa",
			BgColor:          "#121212",
			BgSecondaryColor: "#1e1e1e",
			BorderColor:      "#444",
			HeaderBg:         "#1e1e1e",
			InputBg:          "#333",
			InputBorder:      "#555",
			ModalBg:          "#2c2c2c",
		},
	}
}

// DefaultListFilters 列表过滤默认值：不过滤
func DefaultListFilters() ListFilters {
	return ListFilters{Priorities: []Priority{}, Status: "all"}
}

// DefaultSettings 返回所有字段的默认值。activeFilters 默认包含全部给定类型。
func DefaultSettings(types []ShiftType) Settings {
	ids := make([]string, 0, len(types))
	for _, t := range types {
		ids = append(ids, t.ID)
	}
	return Settings{
		ViewMode:      "grid",
		WeekStartsOn:  "monday",
		Theme:         "light",
		FontFamily:    "Roboto",
		Language:      "it",
		CustomThemes:  DefaultThemes(),
		ActiveFilters: ids,
		ListFilters:   DefaultListFilters(),
	}
}
