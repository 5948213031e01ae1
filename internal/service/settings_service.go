package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"shift-calendar/backend/internal/dto"
	"shift-calendar/backend/internal/model"
	"shift-calendar/backend/internal/repository"
)

// SettingsService 应用设置业务接口
//
// 设置在启动时通过 Load 一次性读入内存，之后读取 Current 不访问存储；
// 每次修改立即整体写回。
type SettingsService interface {
	Load(ctx context.Context) error
	Current() model.Settings
	Get(ctx context.Context) (*dto.SettingsResponse, error)
	Update(ctx context.Context, req *dto.UpdateSettingsRequest) (*dto.SettingsResponse, error)
	// RetainActiveFilters 类型列表变化后，只保留仍然存在的类型 id
	RetainActiveFilters(ctx context.Context, typeIDs []string) error
	// AddActiveFilter 新建类型后默认参与显示
	AddActiveFilter(ctx context.Context, typeID string) error
}

type settingsService struct {
	mu       sync.RWMutex
	current  model.Settings
	language string
	repo     *repository.Repository
	logger   *zap.Logger
}

// NewSettingsService 创建 SettingsService 实例
// defaultLanguage 为语言槽位缺失时的默认值
func NewSettingsService(repo *repository.Repository, defaultLanguage string, logger *zap.Logger) SettingsService {
	s := &settingsService{language: defaultLanguage, repo: repo, logger: logger}
	s.current = s.defaults(model.DefaultShiftTypes())
	return s
}

func (s *settingsService) defaults(types []model.ShiftType) model.Settings {
	d := model.DefaultSettings(types)
	if s.language == "it" || s.language == "en" {
		d.Language = s.language
	}
	return d
}

// ────────────────────── Load ──────────────────────

func (s *settingsService) Load(ctx context.Context) error {
	types, err := s.repo.ShiftType.List(ctx)
	if err != nil {
		s.logger.Error("读取班次类型失败", zap.Error(err))
		return err
	}
	loaded, err := s.repo.Settings.Load(ctx, s.defaults(types))
	if err != nil {
		s.logger.Error("读取设置失败", zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()

	s.logger.Info("设置已加载",
		zap.String("language", loaded.Language),
		zap.String("view_mode", loaded.ViewMode),
		zap.Int("active_filters", len(loaded.ActiveFilters)),
	)
	return nil
}

func (s *settingsService) Current() model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSettings(s.current)
}

// ────────────────────── Get / Update ──────────────────────

func (s *settingsService) Get(_ context.Context) (*dto.SettingsResponse, error) {
	return toSettingsResponse(s.Current()), nil
}

func (s *settingsService) Update(ctx context.Context, req *dto.UpdateSettingsRequest) (*dto.SettingsResponse, error) {
	updated, err := s.mutate(ctx, func(cur *model.Settings) {
		if req.ViewMode != nil {
			cur.ViewMode = *req.ViewMode
		}
		if req.WeekStartsOn != nil {
			cur.WeekStartsOn = *req.WeekStartsOn
		}
		if req.Theme != nil {
			cur.Theme = *req.Theme
		}
		if req.FontFamily != nil {
			cur.FontFamily = *req.FontFamily
		}
		if req.Language != nil {
			cur.Language = *req.Language
		}
		if req.CustomThemes != nil {
			cur.CustomThemes = model.CustomThemes{
				Light: mergeThemeColors(cur.CustomThemes.Light, req.CustomThemes.Light),
				Dark:  mergeThemeColors(cur.CustomThemes.Dark, req.CustomThemes.Dark),
			}
		}
		if req.ActiveFilters != nil {
			cur.ActiveFilters = append([]string{}, (*req.ActiveFilters)...)
		}
		if req.ListFilters != nil {
			f := model.ListFilters{
				DateRange:  model.DateRange{Start: req.ListFilters.Start, End: req.ListFilters.End},
				Priorities: make([]model.Priority, 0, len(req.ListFilters.Priorities)),
				Status:     req.ListFilters.Status,
			}
			for _, p := range req.ListFilters.Priorities {
				f.Priorities = append(f.Priorities, model.Priority(p))
			}
			if f.Status == "" {
				f.Status = "all"
			}
			cur.ListFilters = f
		}
	})
	if err != nil {
		return nil, err
	}
	return toSettingsResponse(updated), nil
}

// ────────────────────── 类型过滤维护 ──────────────────────

func (s *settingsService) RetainActiveFilters(ctx context.Context, typeIDs []string) error {
	keep := make(map[string]bool, len(typeIDs))
	for _, id := range typeIDs {
		keep[id] = true
	}
	_, err := s.mutate(ctx, func(cur *model.Settings) {
		filtered := make([]string, 0, len(cur.ActiveFilters))
		for _, id := range cur.ActiveFilters {
			if keep[id] {
				filtered = append(filtered, id)
			}
		}
		cur.ActiveFilters = filtered
	})
	return err
}

func (s *settingsService) AddActiveFilter(ctx context.Context, typeID string) error {
	_, err := s.mutate(ctx, func(cur *model.Settings) {
		for _, id := range cur.ActiveFilters {
			if id == typeID {
				return
			}
		}
		cur.ActiveFilters = append(cur.ActiveFilters, typeID)
	})
	return err
}

// mutate 修改内存副本并写回存储，写入失败时内存保持原值
func (s *settingsService) mutate(ctx context.Context, fn func(*model.Settings)) (model.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneSettings(s.current)
	fn(&next)
	if err := s.repo.Settings.Save(ctx, next); err != nil {
		s.logger.Error("保存设置失败", zap.Error(err))
		return model.Settings{}, err
	}
	s.current = next
	return cloneSettings(next), nil
}

func cloneSettings(in model.Settings) model.Settings {
	out := in
	out.ActiveFilters = append([]string{}, in.ActiveFilters...)
	out.ListFilters.Priorities = append([]model.Priority{}, in.ListFilters.Priorities...)
	return out
}
