package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"shift-calendar/backend/internal/model"
)

// SettingsRepository 应用设置数据访问接口
//
// 每项设置各占一个槽位：viewMode/weekStartsOn/theme/fontFamily/language 为纯文本，
// customThemes/activeFilters/listFilters 为 JSON。
type SettingsRepository interface {
	// Load 读取全部设置；缺失或非法的项取 defaults 中的对应值
	Load(ctx context.Context, defaults model.Settings) (model.Settings, error)
	Save(ctx context.Context, s model.Settings) error
}

type settingsRepo struct {
	store  SlotStore
	logger *zap.Logger
}

// NewSettingsRepo 创建 SettingsRepository 实例
func NewSettingsRepo(store SlotStore, logger *zap.Logger) SettingsRepository {
	return &settingsRepo{store: store, logger: logger}
}

func (r *settingsRepo) Load(ctx context.Context, defaults model.Settings) (model.Settings, error) {
	s := defaults

	// ── 纯文本槽位 ──
	texts := []struct {
		key     string
		dst     *string
		allowed []string
	}{
		{model.SlotViewMode, &s.ViewMode, []string{"grid", "list"}},
		{model.SlotWeekStartsOn, &s.WeekStartsOn, []string{"monday", "sunday"}},
		{model.SlotTheme, &s.Theme, []string{"light", "dark"}},
		{model.SlotFontFamily, &s.FontFamily, nil},
		{model.SlotLanguage, &s.Language, []string{"it", "en"}},
	}
	for _, f := range texts {
		v, err := loadString(ctx, r.store, f.key)
		if err != nil {
			return defaults, err
		}
		if v == "" {
			continue
		}
		if f.allowed != nil && !contains(f.allowed, v) {
			r.logger.Warn("设置取值非法，使用默认值", zap.String("slot", f.key), zap.String("value", v))
			continue
		}
		*f.dst = v
	}

	// ── JSON 槽位 ──
	// 解码到默认值的拷贝上，缺失字段保留默认值
	themes := s.CustomThemes
	if ok, err := loadJSON(ctx, r.store, model.SlotCustomThemes, &themes, r.logger); err != nil {
		return defaults, err
	} else if ok {
		s.CustomThemes = themes
	}

	var active []string
	if ok, err := loadJSON(ctx, r.store, model.SlotActiveFilters, &active, r.logger); err != nil {
		return defaults, err
	} else if ok && active != nil {
		s.ActiveFilters = active
	}

	filters := s.ListFilters
	if ok, err := loadJSON(ctx, r.store, model.SlotListFilters, &filters, r.logger); err != nil {
		return defaults, err
	} else if ok {
		if filters.Priorities == nil {
			filters.Priorities = []model.Priority{}
		}
		s.ListFilters = filters
	}

	return s, nil
}

func (r *settingsRepo) Save(ctx context.Context, s model.Settings) error {
	texts := map[string]string{
		model.SlotViewMode:     s.ViewMode,
		model.SlotWeekStartsOn: s.WeekStartsOn,
		model.SlotTheme:        s.Theme,
		model.SlotFontFamily:   s.FontFamily,
		model.SlotLanguage:     s.Language,
	}
	for key, v := range texts {
		if err := r.store.Put(ctx, key, []byte(v)); err != nil {
			return fmt.Errorf("写入槽位 %s 失败: %w", key, err)
		}
	}

	if err := saveJSON(ctx, r.store, model.SlotCustomThemes, s.CustomThemes); err != nil {
		return err
	}
	active := s.ActiveFilters
	if active == nil {
		active = []string{}
	}
	if err := saveJSON(ctx, r.store, model.SlotActiveFilters, active); err != nil {
		return err
	}
	return saveJSON(ctx, r.store, model.SlotListFilters, s.ListFilters)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
