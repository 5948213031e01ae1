package service

import (
	"time"

	"shift-calendar/backend/internal/dto"
	"shift-calendar/backend/internal/model"
	"shift-calendar/backend/internal/series"
)

// ── model → dto 转换 ──

func toShiftTypeResponse(t model.ShiftType) dto.ShiftTypeResponse {
	return dto.ShiftTypeResponse{ID: t.ID, Name: t.Name, Color: t.Color, Icon: t.Icon}
}

// toShiftResponse withContent=false 时不返回附件内容
func toShiftResponse(s model.ShiftInstance, types map[string]model.ShiftType, withContent bool) dto.ShiftResponse {
	resp := dto.ShiftResponse{
		ID:                s.ID,
		Date:              s.Date,
		TypeID:            s.TypeID,
		StartTime:         s.StartTime,
		EndTime:           s.EndTime,
		Notes:             s.Notes,
		ShiftChangeMemo:   s.ShiftChangeMemo,
		Documents:         make([]dto.DocumentResponse, 0, len(s.Documents)),
		Priority:          string(s.EffectivePriority()),
		IsCompleted:       s.IsCompleted,
		CompletionHistory: make([]dto.CompletionEntryResponse, 0, len(s.CompletionHistory)),
		RecurrenceID:      s.RecurrenceID,
		OriginalDate:      s.OriginalDate,
	}
	if t, ok := types[s.TypeID]; ok {
		tr := toShiftTypeResponse(t)
		resp.Type = &tr
	}
	for _, d := range s.Documents {
		doc := dto.DocumentResponse{ID: d.ID, Name: d.Name, Type: d.Type}
		if withContent {
			doc.Content = d.Content
		}
		resp.Documents = append(resp.Documents, doc)
	}
	for _, h := range s.CompletionHistory {
		resp.CompletionHistory = append(resp.CompletionHistory, dto.CompletionEntryResponse{
			Status:    string(h.Status),
			Timestamp: h.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	if s.ReminderDateTime != nil {
		v := s.ReminderDateTime.Format(time.RFC3339)
		resp.ReminderAt = &v
	}
	if s.RecurrenceRule != nil {
		resp.Recurrence = &dto.RecurrenceResponse{
			Frequency: string(s.RecurrenceRule.Frequency),
			Interval:  s.RecurrenceRule.Interval,
			EndDate:   s.RecurrenceRule.EndDate,
		}
	}
	return resp
}

func toShiftResponses(shifts []model.ShiftInstance, types map[string]model.ShiftType) []dto.ShiftResponse {
	out := make([]dto.ShiftResponse, 0, len(shifts))
	for _, s := range shifts {
		out = append(out, toShiftResponse(s, types, false))
	}
	return out
}

func toMutationResponse(res *series.Result, types map[string]model.ShiftType) *dto.ShiftMutationResponse {
	removed := res.Removed
	if removed == nil {
		removed = []string{}
	}
	return &dto.ShiftMutationResponse{
		Changed: toShiftResponses(res.Changed, types),
		Removed: removed,
	}
}

// ── 设置 ──

func toThemeColorsDTO(c model.ThemeColors) dto.ThemeColorsDTO {
	return dto.ThemeColorsDTO{
		PrimaryColor:     c.PrimaryColor,
		SecondaryColor:   c.SecondaryColor,
		DangerColor:      c.DangerColor,
		TextColor:        c.TextColor,
		BgColor:          c.BgColor,
		BgSecondaryColor: c.BgSecondaryColor,
		BorderColor:      c.BorderColor,
		HeaderBg:         c.HeaderBg,
		InputBg:          c.InputBg,
		InputBorder:      c.InputBorder,
		ModalBg:          c.ModalBg,
	}
}

// mergeThemeColors 只覆盖提交了取值的颜色
func mergeThemeColors(base model.ThemeColors, d dto.ThemeColorsDTO) model.ThemeColors {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&base.PrimaryColor, d.PrimaryColor)
	set(&base.SecondaryColor, d.SecondaryColor)
	set(&base.DangerColor, d.DangerColor)
	set(&base.TextColor, d.TextColor)
	set(&base.BgColor, d.BgColor)
	set(&base.BgSecondaryColor, d.BgSecondaryColor)
	set(&base.BorderColor, d.BorderColor)
	set(&base.HeaderBg, d.HeaderBg)
	set(&base.InputBg, d.InputBg)
	set(&base.InputBorder, d.InputBorder)
	set(&base.ModalBg, d.ModalBg)
	return base
}

func toSettingsResponse(s model.Settings) *dto.SettingsResponse {
	priorities := make([]string, 0, len(s.ListFilters.Priorities))
	for _, p := range s.ListFilters.Priorities {
		priorities = append(priorities, string(p))
	}
	active := append([]string{}, s.ActiveFilters...)
	return &dto.SettingsResponse{
		ViewMode:     s.ViewMode,
		WeekStartsOn: s.WeekStartsOn,
		Theme:        s.Theme,
		FontFamily:   s.FontFamily,
		Language:     s.Language,
		CustomThemes: dto.CustomThemesDTO{
			Light: toThemeColorsDTO(s.CustomThemes.Light),
			Dark:  toThemeColorsDTO(s.CustomThemes.Dark),
		},
		ActiveFilters: active,
		ListFilters: dto.ListFiltersDTO{
			Start:      s.ListFilters.DateRange.Start,
			End:        s.ListFilters.DateRange.End,
			Priorities: priorities,
			Status:     s.ListFilters.Status,
		},
	}
}
