package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"shift-calendar/backend/internal/dto"
	"shift-calendar/backend/internal/model"
	"shift-calendar/backend/internal/recurrence"
	"shift-calendar/backend/internal/repository"
	"shift-calendar/backend/internal/series"
)

// ── 班次模块业务错误 ──

var (
	ErrShiftNotFound  = errors.New("班次不存在")
	ErrDuplicateShift = errors.New("已存在日期、类型与时间相同的班次")
	ErrScopeRequired  = errors.New("重复系列中的班次需要指定操作范围")
	ErrInvalidScope   = errors.New("无效的系列操作范围")
	ErrInvalidShift   = errors.New("班次数据不合法")
)

// ShiftService 班次业务接口
type ShiftService interface {
	List(ctx context.Context, req *dto.ShiftListRequest) ([]dto.ShiftResponse, error)
	Month(ctx context.Context, req *dto.MonthRequest) ([]dto.ShiftResponse, error)
	OnDate(ctx context.Context, date string) ([]dto.ShiftResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ShiftResponse, error)
	Create(ctx context.Context, req *dto.SaveShiftRequest) (*dto.ShiftMutationResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateShiftRequest) (*dto.ShiftMutationResponse, error)
	Delete(ctx context.Context, id string, scope string) (*dto.ShiftMutationResponse, error)
	ToggleCompletion(ctx context.Context, id string) (*dto.ShiftResponse, error)
}

type shiftService struct {
	query  *shiftQuery
	store  *ShiftStore
	repo   *repository.Repository
	engine *series.Engine
	logger *zap.Logger
}

// NewShiftService 创建 ShiftService 实例
func NewShiftService(repo *repository.Repository, store *ShiftStore, settings SettingsService, engine *series.Engine, logger *zap.Logger) ShiftService {
	return &shiftService{
		query:  &shiftQuery{store: store, types: repo.ShiftType, settings: settings},
		store:  store,
		repo:   repo,
		engine: engine,
		logger: logger,
	}
}

// ────────────────────── 查询 ──────────────────────

func (s *shiftService) List(ctx context.Context, req *dto.ShiftListRequest) ([]dto.ShiftResponse, error) {
	shifts, types, err := s.query.listView(ctx, req)
	if err != nil {
		s.logger.Error("查询班次列表失败", zap.Error(err))
		return nil, err
	}
	return toShiftResponses(shifts, types), nil
}

func (s *shiftService) Month(ctx context.Context, req *dto.MonthRequest) ([]dto.ShiftResponse, error) {
	shifts, types, err := s.query.monthView(ctx, req.Month, req.Types)
	if err != nil {
		if !errors.Is(err, ErrInvalidMonth) {
			s.logger.Error("查询月视图失败", zap.String("month", req.Month), zap.Error(err))
		}
		return nil, err
	}
	return toShiftResponses(shifts, types), nil
}

func (s *shiftService) OnDate(ctx context.Context, date string) ([]dto.ShiftResponse, error) {
	if _, err := recurrence.ParseDate(date); err != nil {
		return nil, ErrInvalidShift
	}
	shifts, types, err := s.query.dayView(ctx, date)
	if err != nil {
		s.logger.Error("查询当日班次失败", zap.String("date", date), zap.Error(err))
		return nil, err
	}
	return toShiftResponses(shifts, types), nil
}

func (s *shiftService) GetByID(ctx context.Context, id string) (*dto.ShiftResponse, error) {
	shifts, types, err := s.query.load(ctx)
	if err != nil {
		s.logger.Error("查询班次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	inst, ok := series.Find(shifts, id)
	if !ok {
		return nil, ErrShiftNotFound
	}
	resp := toShiftResponse(inst, model.ShiftTypeIndex(types), true)
	return &resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *shiftService) Create(ctx context.Context, req *dto.SaveShiftRequest) (*dto.ShiftMutationResponse, error) {
	types, err := s.requireType(ctx, req.TypeID)
	if err != nil {
		return nil, err
	}
	d := draftFrom(req)

	res, err := s.store.Mutate(ctx, func(shifts []model.ShiftInstance) (*series.Result, error) {
		if err := checkDuplicate(shifts, d, "", req.ConfirmDuplicate); err != nil {
			return nil, err
		}
		return s.engine.Save(shifts, nil, d)
	})
	if err != nil {
		return nil, s.mutationError("新建班次失败", err)
	}

	s.logger.Info("班次已保存",
		zap.String("date", d.Date),
		zap.String("type_id", d.TypeID),
		zap.Int("instances", len(res.Changed)),
	)
	return toMutationResponse(res, types), nil
}

// ────────────────────── Update ──────────────────────

// Update 编辑班次。
// 独立班次按表单整体保存（可转为新系列）；系列成员按 scope 编辑。附件不随表单变化。
func (s *shiftService) Update(ctx context.Context, id string, req *dto.UpdateShiftRequest) (*dto.ShiftMutationResponse, error) {
	types, err := s.requireType(ctx, req.TypeID)
	if err != nil {
		return nil, err
	}

	res, err := s.store.Mutate(ctx, func(shifts []model.ShiftInstance) (*series.Result, error) {
		target, ok := series.Find(shifts, id)
		if !ok {
			return nil, ErrShiftNotFound
		}
		d := draftFrom(&req.SaveShiftRequest)
		d.Documents = target.Documents

		if target.InSeries() {
			if req.Scope == "" {
				return nil, ErrScopeRequired
			}
			return s.engine.Edit(shifts, id, d, series.Scope(req.Scope))
		}
		if err := checkDuplicate(shifts, d, id, req.ConfirmDuplicate); err != nil {
			return nil, err
		}
		return s.engine.Save(shifts, &target, d)
	})
	if err != nil {
		return nil, s.mutationError("更新班次失败", err)
	}

	s.logger.Info("班次已更新",
		zap.String("id", id),
		zap.String("scope", req.Scope),
		zap.Int("changed", len(res.Changed)),
		zap.Int("removed", len(res.Removed)),
	)
	return toMutationResponse(res, types), nil
}

// ────────────────────── Delete ──────────────────────

func (s *shiftService) Delete(ctx context.Context, id string, scope string) (*dto.ShiftMutationResponse, error) {
	res, err := s.store.Mutate(ctx, func(shifts []model.ShiftInstance) (*series.Result, error) {
		target, ok := series.Find(shifts, id)
		if !ok {
			return nil, ErrShiftNotFound
		}
		if target.InSeries() && scope == "" {
			return nil, ErrScopeRequired
		}
		return s.engine.Delete(shifts, id, series.Scope(scope))
	})
	if err != nil {
		return nil, s.mutationError("删除班次失败", err)
	}

	s.logger.Info("班次已删除", zap.String("id", id), zap.String("scope", scope), zap.Strings("removed", res.Removed))
	return toMutationResponse(res, nil), nil
}

// ────────────────────── ToggleCompletion ──────────────────────

func (s *shiftService) ToggleCompletion(ctx context.Context, id string) (*dto.ShiftResponse, error) {
	res, err := s.store.Mutate(ctx, func(shifts []model.ShiftInstance) (*series.Result, error) {
		return s.engine.Toggle(shifts, id)
	})
	if err != nil {
		return nil, s.mutationError("切换完成状态失败", err)
	}
	types, err := s.repo.ShiftType.List(ctx)
	if err != nil {
		s.logger.Error("查询班次类型失败", zap.Error(err))
		return nil, err
	}
	resp := toShiftResponse(res.Changed[0], model.ShiftTypeIndex(types), false)
	return &resp, nil
}

// ── 辅助函数 ──

// requireType 校验类型存在并返回类型索引
func (s *shiftService) requireType(ctx context.Context, typeID string) (map[string]model.ShiftType, error) {
	types, err := s.repo.ShiftType.List(ctx)
	if err != nil {
		s.logger.Error("查询班次类型失败", zap.Error(err))
		return nil, err
	}
	idx := model.ShiftTypeIndex(types)
	if _, ok := idx[typeID]; !ok {
		return nil, ErrShiftTypeNotFound
	}
	return idx, nil
}

// mutationError 将引擎错误映射为业务错误；非业务错误记录日志后原样返回
func (s *shiftService) mutationError(msg string, err error) error {
	switch {
	case errors.Is(err, series.ErrShiftNotFound):
		return ErrShiftNotFound
	case errors.Is(err, series.ErrInvalidScope):
		return ErrInvalidScope
	case errors.Is(err, series.ErrInvalidDraft), errors.Is(err, recurrence.ErrInvalidDate), errors.Is(err, recurrence.ErrInvalidRule):
		return ErrInvalidShift
	case errors.Is(err, ErrShiftNotFound), errors.Is(err, ErrDuplicateShift), errors.Is(err, ErrScopeRequired):
		return err
	}
	s.logger.Error(msg, zap.Error(err))
	return err
}

// checkDuplicate 单个班次保存前的重复检查；启用重复或已确认时跳过
func checkDuplicate(shifts []model.ShiftInstance, d series.Draft, excludeID string, confirmed bool) error {
	if confirmed || recurrence.Usable(d.Recurrence, d.Date) {
		return nil
	}
	if series.IsDuplicate(shifts, d.Date, d.TypeID, d.StartTime, d.EndTime, excludeID) {
		return ErrDuplicateShift
	}
	return nil
}

func draftFrom(req *dto.SaveShiftRequest) series.Draft {
	d := series.Draft{
		Date:             req.Date,
		TypeID:           req.TypeID,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		Notes:            req.Notes,
		ShiftChangeMemo:  req.ShiftChangeMemo,
		Priority:         model.Priority(req.Priority),
		IsCompleted:      req.IsCompleted,
		ReminderDateTime: req.ReminderAt,
	}
	if d.Priority == "" {
		d.Priority = model.PriorityMedium
	}
	if req.Recurrence != nil {
		d.Recurrence = &model.RecurrenceRule{
			Frequency: model.Frequency(req.Recurrence.Frequency),
			Interval:  req.Recurrence.Interval,
			EndDate:   req.Recurrence.EndDate,
		}
	}
	return d
}
