package dto

// ── 设置模块 DTO ──

// ThemeColorsDTO 主题调色板
type ThemeColorsDTO struct {
	PrimaryColor     string `json:"primary_color"      binding:"omitempty,hexcolor"`
	SecondaryColor   string `json:"secondary_color"    binding:"omitempty,hexcolor"`
	DangerColor      string `json:"danger_color"       binding:"omitempty,hexcolor"`
	TextColor        string `json:"text_color"         binding:"omitempty,hexcolor"`
	BgColor          string `json:"bg_color"           binding:"omitempty,hexcolor"`
	BgSecondaryColor string `json:"bg_secondary_color" binding:"omitempty,hexcolor"`
	BorderColor      string `json:"border_color"       binding:"omitempty,hexcolor"`
	HeaderBg         string `json:"header_bg"          binding:"omitempty,hexcolor"`
	InputBg          string `json:"input_bg"           binding:"omitempty,hexcolor"`
	InputBorder      string `json:"input_border"       binding:"omitempty,hexcolor"`
	ModalBg          string `json:"modal_bg"           binding:"omitempty,hexcolor"`
}

// CustomThemesDTO 亮色/暗色调色板
type CustomThemesDTO struct {
	Light ThemeColorsDTO `json:"light"`
	Dark  ThemeColorsDTO `json:"dark"`
}

// ListFiltersDTO 列表视图过滤条件
type ListFiltersDTO struct {
	Start      string   `json:"start"      binding:"omitempty,ymd"`
	End        string   `json:"end"        binding:"omitempty,ymd"`
	Priorities []string `json:"priorities" binding:"omitempty,dive,oneof=low medium high"`
	Status     string   `json:"status"     binding:"omitempty,oneof=all completed incomplete"`
}

// UpdateSettingsRequest 更新设置请求，未提供的字段保持不变
type UpdateSettingsRequest struct {
	ViewMode      *string          `json:"view_mode"      binding:"omitempty,oneof=grid list"`
	WeekStartsOn  *string          `json:"week_starts_on" binding:"omitempty,oneof=monday sunday"`
	Theme         *string          `json:"theme"          binding:"omitempty,oneof=light dark"`
	FontFamily    *string          `json:"font_family"    binding:"omitempty,max=64"`
	Language      *string          `json:"language"       binding:"omitempty,oneof=it en"`
	CustomThemes  *CustomThemesDTO `json:"custom_themes"`
	ActiveFilters *[]string        `json:"active_filters"`
	ListFilters   *ListFiltersDTO  `json:"list_filters"`
}

// SettingsResponse 设置响应
type SettingsResponse struct {
	ViewMode      string          `json:"view_mode"`
	WeekStartsOn  string          `json:"week_starts_on"`
	Theme         string          `json:"theme"`
	FontFamily    string          `json:"font_family"`
	Language      string          `json:"language"`
	CustomThemes  CustomThemesDTO `json:"custom_themes"`
	ActiveFilters []string        `json:"active_filters"`
	ListFilters   ListFiltersDTO  `json:"list_filters"`
}
