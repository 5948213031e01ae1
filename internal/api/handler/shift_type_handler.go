package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"shift-calendar/backend/internal/dto"
	"shift-calendar/backend/internal/service"
	"shift-calendar/backend/pkg/response"
)

// ShiftTypeHandler 班次类型模块 HTTP 处理器
type ShiftTypeHandler struct {
	typeSvc service.ShiftTypeService
}

// NewShiftTypeHandler 创建 ShiftTypeHandler
func NewShiftTypeHandler(typeSvc service.ShiftTypeService) *ShiftTypeHandler {
	return &ShiftTypeHandler{typeSvc: typeSvc}
}

// ListShiftTypes 获取类型列表
// GET /api/v1/shift-types
func (h *ShiftTypeHandler) ListShiftTypes(c *gin.Context) {
	types, err := h.typeSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": types})
}

// ReplaceShiftTypes 整体替换类型列表
// PUT /api/v1/shift-types
func (h *ShiftTypeHandler) ReplaceShiftTypes(c *gin.Context) {
	var req dto.ReplaceShiftTypesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	types, err := h.typeSvc.ReplaceAll(c.Request.Context(), &req)
	if err != nil {
		h.handleShiftTypeError(c, err)
		return
	}

	response.OK(c, gin.H{"list": types})
}

// CreateShiftType 新建类型
// POST /api/v1/shift-types
func (h *ShiftTypeHandler) CreateShiftType(c *gin.Context) {
	var req dto.CreateShiftTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	st, err := h.typeSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleShiftTypeError(c, err)
		return
	}

	response.Created(c, st)
}

// UpdateShiftType 更新类型
// PUT /api/v1/shift-types/:id
func (h *ShiftTypeHandler) UpdateShiftType(c *gin.Context) {
	var req dto.UpdateShiftTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	st, err := h.typeSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleShiftTypeError(c, err)
		return
	}

	response.OK(c, st)
}

// DeleteShiftType 删除类型（不级联删除班次）
// DELETE /api/v1/shift-types/:id
func (h *ShiftTypeHandler) DeleteShiftType(c *gin.Context) {
	if err := h.typeSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleShiftTypeError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *ShiftTypeHandler) handleShiftTypeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrShiftTypeNotFound):
		response.NotFound(c, 21001, "班次类型不存在")
	case errors.Is(err, service.ErrDuplicateShiftTypeID):
		response.BadRequest(c, 21002, "班次类型 id 重复")
	default:
		response.InternalError(c)
	}
}
