package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"shift-calendar/backend/internal/dto"
	"shift-calendar/backend/internal/service"
	"shift-calendar/backend/pkg/response"
)

// ExportHandler 导出/导入模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
	importSvc service.ImportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService, importSvc service.ImportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, importSvc: importSvc}
}

// Export 导出班次
// GET /api/v1/export?format=csv|xlsx|ics&view=list|grid&month=YYYY-MM
func (h *ExportHandler) Export(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	f, err := h.exportSvc.Export(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(f.Filename))
	c.Data(http.StatusOK, f.ContentType, f.Content.Bytes())
}

// ImportICS 导入 ICS 日历
// POST /api/v1/import/ics
//
// 支持两种方式：
//   - 文件上传: multipart/form-data, field="file"，type_id 为表单字段
//   - URL 导入: application/json, body={"type_id": "...", "url": "..."}
func (h *ExportHandler) ImportICS(c *gin.Context) {
	var req dto.ImportICSRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	// 优先使用上传的文件
	if file, _, err := c.Request.FormFile("file"); err == nil {
		defer file.Close()
		resp, err := h.importSvc.ImportICS(c.Request.Context(), req.TypeID, file)
		if err != nil {
			h.handleImportError(c, err)
			return
		}
		response.Created(c, resp)
		return
	}

	if req.URL == "" {
		response.BadRequest(c, 25000, "请上传 ICS 文件或提供 ICS URL")
		return
	}
	resp, err := h.importSvc.ImportICSFromURL(c.Request.Context(), req.TypeID, req.URL)
	if err != nil {
		h.handleImportError(c, err)
		return
	}
	response.Created(c, resp)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnsupportedFormat):
		response.BadRequest(c, 24001, "不支持的导出格式")
	case errors.Is(err, service.ErrInvalidMonth):
		response.BadRequest(c, 20006, "月份格式应为 YYYY-MM")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}

func (h *ExportHandler) handleImportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrShiftTypeNotFound):
		response.BadRequest(c, 21001, "班次类型不存在")
	case errors.Is(err, service.ErrInvalidICS):
		response.BadRequest(c, 25001, "ICS 文件无法解析")
	default:
		response.InternalError(c)
	}
}
