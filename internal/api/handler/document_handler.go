package handler

import (
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"shift-calendar/backend/internal/dto"
	"shift-calendar/backend/internal/service"
	"shift-calendar/backend/pkg/response"
)

// DocumentHandler 班次附件 HTTP 处理器
type DocumentHandler struct {
	docSvc service.DocumentService
}

// NewDocumentHandler 创建 DocumentHandler
func NewDocumentHandler(docSvc service.DocumentService) *DocumentHandler {
	return &DocumentHandler{docSvc: docSvc}
}

// AddDocument 上传附件
// POST /api/v1/shifts/:id/documents (multipart/form-data, field="file")
func (h *DocumentHandler) AddDocument(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 23000, "请上传附件")
		return
	}
	file, err := fh.Open()
	if err != nil {
		response.BadRequest(c, 23000, "附件读取失败")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(c, 23000, "附件读取失败")
		return
	}

	doc, err := h.docSvc.Add(c.Request.Context(), c.Param("id"), fh.Filename, fh.Header.Get("Content-Type"), data)
	if err != nil {
		h.handleDocumentError(c, err)
		return
	}

	response.Created(c, dto.DocumentResponse{ID: doc.ID, Name: doc.Name, Type: doc.Type})
}

// DownloadDocument 下载附件
// GET /api/v1/shifts/:id/documents/:docId
func (h *DocumentHandler) DownloadDocument(c *gin.Context) {
	f, err := h.docSvc.Get(c.Request.Context(), c.Param("id"), c.Param("docId"))
	if err != nil {
		h.handleDocumentError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(f.Name))
	c.Data(http.StatusOK, f.Type, f.Data)
}

// RemoveDocument 删除附件
// DELETE /api/v1/shifts/:id/documents/:docId
func (h *DocumentHandler) RemoveDocument(c *gin.Context) {
	if err := h.docSvc.Remove(c.Request.Context(), c.Param("id"), c.Param("docId")); err != nil {
		h.handleDocumentError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *DocumentHandler) handleDocumentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrShiftNotFound):
		response.NotFound(c, 20001, "班次不存在")
	case errors.Is(err, service.ErrDocumentNotFound):
		response.NotFound(c, 23001, "附件不存在")
	case errors.Is(err, service.ErrAttachmentTooLarge):
		response.TooLarge(c, 23002, "附件超过大小上限")
	case errors.Is(err, service.ErrEmptyAttachment):
		response.BadRequest(c, 23003, "附件内容为空")
	default:
		response.InternalError(c)
	}
}
