package service

import (
	"go.uber.org/zap"

	"shift-calendar/backend/config"
	"shift-calendar/backend/internal/model"
	"shift-calendar/backend/internal/repository"
	"shift-calendar/backend/internal/series"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Settings  SettingsService
	ShiftType ShiftTypeService
	Shift     ShiftService
	Document  DocumentService
	Reminder  ReminderService
	Export    ExportService
	Import    ImportService
}

// NewService 创建 Service 聚合。
// 所有写班次集合的服务共用同一个 ShiftStore 与变更引擎。
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	notifier Notifier,
	logger *zap.Logger,
) *Service {
	store := NewShiftStore(repo.Shift)
	engine := series.NewEngine()
	loc := cfg.Location()
	model.SetReminderLocation(loc)

	settings := NewSettingsService(repo, cfg.Reminder.Language, logger)
	reminder := NewReminderService(store, repo.ShiftType, settings, notifier,
		cfg.Reminder.Interval, logger, WithReminderLocation(loc))

	return &Service{
		Settings:  settings,
		ShiftType: NewShiftTypeService(repo, settings, logger),
		Shift:     NewShiftService(repo, store, settings, engine, logger),
		Document:  NewDocumentService(store, cfg.Attachment.MaxBytes, logger),
		Reminder:  reminder,
		Export:    NewExportService(repo, store, settings, loc, logger),
		Import:    NewImportService(repo, store, engine, loc, logger),
	}
}
