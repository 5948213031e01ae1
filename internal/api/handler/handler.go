package handler

import "shift-calendar/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Shift     *ShiftHandler
	ShiftType *ShiftTypeHandler
	Settings  *SettingsHandler
	Document  *DocumentHandler
	Export    *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Shift:     NewShiftHandler(svc.Shift),
		ShiftType: NewShiftTypeHandler(svc.ShiftType),
		Settings:  NewSettingsHandler(svc.Settings),
		Document:  NewDocumentHandler(svc.Document),
		Export:    NewExportHandler(svc.Export, svc.Import),
	}
}
