package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"shift-calendar/backend/internal/model"
	"shift-calendar/backend/internal/recurrence"
	"shift-calendar/backend/internal/repository"
	"shift-calendar/backend/internal/series"
)

// ReminderService 班次提醒扫描
type ReminderService interface {
	// Scan 投递所有到期提醒并清除其提醒时间，返回触发数量
	Scan(ctx context.Context) (int, error)
	// Run 按固定间隔执行 Scan，直到 ctx 结束
	Run(ctx context.Context)
}

// ReminderOption 提醒服务选项
type ReminderOption func(*reminderService)

// WithReminderClock 注入时钟
func WithReminderClock(now func() time.Time) ReminderOption {
	return func(s *reminderService) { s.now = now }
}

// WithReminderLocation 提醒文案中时间的显示时区
func WithReminderLocation(loc *time.Location) ReminderOption {
	return func(s *reminderService) { s.loc = loc }
}

type reminderService struct {
	store    *ShiftStore
	types    repository.ShiftTypeRepository
	settings SettingsService
	notifier Notifier
	interval time.Duration
	now      func() time.Time
	loc      *time.Location
	logger   *zap.Logger
}

// NewReminderService 创建 ReminderService 实例
func NewReminderService(
	store *ShiftStore,
	types repository.ShiftTypeRepository,
	settings SettingsService,
	notifier Notifier,
	interval time.Duration,
	logger *zap.Logger,
	opts ...ReminderOption,
) ReminderService {
	s := &reminderService{
		store:    store,
		types:    types,
		settings: settings,
		notifier: notifier,
		interval: interval,
		now:      time.Now,
		loc:      time.Local,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ────────────────────── Run ──────────────────────

func (s *reminderService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("提醒扫描已启动", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("提醒扫描已停止")
			return
		case <-ticker.C:
			if _, err := s.Scan(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("提醒扫描失败", zap.Error(err))
			}
		}
	}
}

// ────────────────────── Scan ──────────────────────

// Scan 先在一次存储更新中清除全部到期提醒，再逐条投递。
// 投递失败只记录日志，不恢复提醒时间。
func (s *reminderService) Scan(ctx context.Context) (int, error) {
	now := s.now()

	var due []model.ShiftInstance
	_, err := s.store.Mutate(ctx, func(shifts []model.ShiftInstance) (*series.Result, error) {
		out := model.CloneShifts(shifts)
		for i := range out {
			r := out[i].ReminderDateTime
			if r == nil || r.After(now) {
				continue
			}
			due = append(due, out[i].Clone())
			out[i].ReminderDateTime = nil
		}
		if len(due) == 0 {
			return nil, nil
		}
		return &series.Result{Shifts: out, Changed: due}, nil
	})
	if err != nil {
		return 0, err
	}
	if len(due) == 0 {
		return 0, nil
	}

	types, err := s.types.List(ctx)
	if err != nil {
		s.logger.Warn("读取班次类型失败，提醒中使用默认名称", zap.Error(err))
	}
	idx := model.ShiftTypeIndex(types)
	lang := s.settings.Current().Language
	l := labelsFor(lang)

	for _, inst := range due {
		name := l.UnknownType
		if t, ok := idx[inst.TypeID]; ok {
			name = t.Name
		}
		shiftDate, _ := recurrence.ParseDate(inst.Date)
		at := inst.ReminderDateTime.In(s.loc)

		reminder := Reminder{
			ShiftID:  inst.ID,
			Title:    l.ReminderTitle,
			Body:     l.reminderText(name, shiftDate, at),
			Language: lang,
			DueAt:    *inst.ReminderDateTime,
		}
		if err := s.notifier.Notify(ctx, reminder); err != nil {
			s.logger.Error("提醒投递失败", zap.String("shift_id", inst.ID), zap.Error(err))
		}
	}

	s.logger.Info("提醒已触发", zap.Int("count", len(due)))
	return len(due), nil
}
