package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shift-calendar/backend/internal/dto"
	"shift-calendar/backend/internal/model"
	"shift-calendar/backend/internal/repository"
)

// ── 班次类型模块业务错误 ──

var (
	ErrShiftTypeNotFound    = errors.New("班次类型不存在")
	ErrDuplicateShiftTypeID = errors.New("班次类型 id 重复")
)

// ShiftTypeService 班次类型业务接口
//
// 删除或替换类型不会级联删除班次；引用已删除类型的班次在展示时类型为空、导出时显示为 N/D。
type ShiftTypeService interface {
	List(ctx context.Context) ([]dto.ShiftTypeResponse, error)
	ReplaceAll(ctx context.Context, req *dto.ReplaceShiftTypesRequest) ([]dto.ShiftTypeResponse, error)
	Create(ctx context.Context, req *dto.CreateShiftTypeRequest) (*dto.ShiftTypeResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateShiftTypeRequest) (*dto.ShiftTypeResponse, error)
	Delete(ctx context.Context, id string) error
}

type shiftTypeService struct {
	mu       sync.Mutex
	repo     *repository.Repository
	settings SettingsService
	logger   *zap.Logger
}

// NewShiftTypeService 创建 ShiftTypeService 实例
func NewShiftTypeService(repo *repository.Repository, settings SettingsService, logger *zap.Logger) ShiftTypeService {
	return &shiftTypeService{repo: repo, settings: settings, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *shiftTypeService) List(ctx context.Context) ([]dto.ShiftTypeResponse, error) {
	types, err := s.repo.ShiftType.List(ctx)
	if err != nil {
		s.logger.Error("查询班次类型失败", zap.Error(err))
		return nil, err
	}
	return toShiftTypeResponses(types), nil
}

// ────────────────────── ReplaceAll ──────────────────────

func (s *shiftTypeService) ReplaceAll(ctx context.Context, req *dto.ReplaceShiftTypesRequest) ([]dto.ShiftTypeResponse, error) {
	types := make([]model.ShiftType, 0, len(req.Types))
	seen := make(map[string]bool, len(req.Types))
	for _, item := range req.Types {
		if seen[item.ID] {
			return nil, ErrDuplicateShiftTypeID
		}
		seen[item.ID] = true
		types = append(types, model.ShiftType{ID: item.ID, Name: item.Name, Color: item.Color, Icon: item.Icon})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.save(ctx, types); err != nil {
		return nil, err
	}
	return toShiftTypeResponses(types), nil
}

// ────────────────────── Create ──────────────────────

func (s *shiftTypeService) Create(ctx context.Context, req *dto.CreateShiftTypeRequest) (*dto.ShiftTypeResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	types, err := s.repo.ShiftType.List(ctx)
	if err != nil {
		s.logger.Error("查询班次类型失败", zap.Error(err))
		return nil, err
	}
	t := model.ShiftType{ID: uuid.NewString(), Name: req.Name, Color: req.Color, Icon: req.Icon}
	types = append(types, t)

	if err := s.repo.ShiftType.ReplaceAll(ctx, types); err != nil {
		s.logger.Error("保存班次类型失败", zap.Error(err))
		return nil, err
	}
	if err := s.settings.AddActiveFilter(ctx, t.ID); err != nil {
		return nil, err
	}

	s.logger.Info("班次类型已创建", zap.String("id", t.ID), zap.String("name", t.Name))
	resp := toShiftTypeResponse(t)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *shiftTypeService) Update(ctx context.Context, id string, req *dto.UpdateShiftTypeRequest) (*dto.ShiftTypeResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	types, err := s.repo.ShiftType.List(ctx)
	if err != nil {
		s.logger.Error("查询班次类型失败", zap.Error(err))
		return nil, err
	}

	idx := indexOfType(types, id)
	if idx < 0 {
		return nil, ErrShiftTypeNotFound
	}
	if req.Name != nil {
		types[idx].Name = *req.Name
	}
	if req.Color != nil {
		types[idx].Color = *req.Color
	}
	if req.Icon != nil {
		types[idx].Icon = *req.Icon
	}

	if err := s.repo.ShiftType.ReplaceAll(ctx, types); err != nil {
		s.logger.Error("保存班次类型失败", zap.Error(err))
		return nil, err
	}
	resp := toShiftTypeResponse(types[idx])
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *shiftTypeService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	types, err := s.repo.ShiftType.List(ctx)
	if err != nil {
		s.logger.Error("查询班次类型失败", zap.Error(err))
		return err
	}
	idx := indexOfType(types, id)
	if idx < 0 {
		return ErrShiftTypeNotFound
	}
	remaining := append(types[:idx:idx], types[idx+1:]...)
	return s.save(ctx, remaining)
}

// save 写回类型列表，并把显示过滤收敛到仍存在的类型
func (s *shiftTypeService) save(ctx context.Context, types []model.ShiftType) error {
	if err := s.repo.ShiftType.ReplaceAll(ctx, types); err != nil {
		s.logger.Error("保存班次类型失败", zap.Error(err))
		return err
	}
	ids := make([]string, 0, len(types))
	for _, t := range types {
		ids = append(ids, t.ID)
	}
	return s.settings.RetainActiveFilters(ctx, ids)
}

// ── 辅助函数 ──

func indexOfType(types []model.ShiftType, id string) int {
	for i, t := range types {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func toShiftTypeResponses(types []model.ShiftType) []dto.ShiftTypeResponse {
	out := make([]dto.ShiftTypeResponse, 0, len(types))
	for _, t := range types {
		out = append(out, toShiftTypeResponse(t))
	}
	return out
}
