package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"shift-calendar/backend/internal/dto"
	"shift-calendar/backend/internal/service"
	"shift-calendar/backend/pkg/response"
)

// ShiftHandler 班次模块 HTTP 处理器
type ShiftHandler struct {
	shiftSvc service.ShiftService
}

// NewShiftHandler 创建 ShiftHandler
func NewShiftHandler(shiftSvc service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftSvc: shiftSvc}
}

// ListShifts 列表视图
// GET /api/v1/shifts?start=&end=&priority=&status=&type=&sort=&order=
func (h *ShiftHandler) ListShifts(c *gin.Context) {
	var req dto.ShiftListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	shifts, err := h.shiftSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, gin.H{"list": shifts})
}

// GetMonth 月视图
// GET /api/v1/shifts/month?month=YYYY-MM
func (h *ShiftHandler) GetMonth(c *gin.Context) {
	var req dto.MonthRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	shifts, err := h.shiftSvc.Month(c.Request.Context(), &req)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, gin.H{"month": req.Month, "list": shifts})
}

// GetDate 某一天的班次
// GET /api/v1/shifts/date/:date
func (h *ShiftHandler) GetDate(c *gin.Context) {
	date := c.Param("date")

	shifts, err := h.shiftSvc.OnDate(c.Request.Context(), date)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, gin.H{"date": date, "list": shifts})
}

// GetShift 班次详情（含附件内容）
// GET /api/v1/shifts/:id
func (h *ShiftHandler) GetShift(c *gin.Context) {
	shift, err := h.shiftSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, shift)
}

// CreateShift 新建班次或系列
// POST /api/v1/shifts
func (h *ShiftHandler) CreateShift(c *gin.Context) {
	var req dto.SaveShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.shiftSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateShift 更新班次；系列成员需指定 scope
// PUT /api/v1/shifts/:id
func (h *ShiftHandler) UpdateShift(c *gin.Context) {
	var req dto.UpdateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.shiftSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteShift 删除班次
// DELETE /api/v1/shifts/:id?scope=
func (h *ShiftHandler) DeleteShift(c *gin.Context) {
	var req dto.DeleteShiftRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.shiftSvc.Delete(c.Request.Context(), c.Param("id"), req.Scope)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, result)
}

// ToggleCompletion 切换完成状态
// POST /api/v1/shifts/:id/toggle-completion
func (h *ShiftHandler) ToggleCompletion(c *gin.Context) {
	shift, err := h.shiftSvc.ToggleCompletion(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, shift)
}

// handleShiftError 统一处理班次模块业务错误
func (h *ShiftHandler) handleShiftError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrShiftNotFound):
		response.NotFound(c, 20001, "班次不存在")
	case errors.Is(err, service.ErrDuplicateShift):
		response.Conflict(c, 20002, "已存在相同的班次，确认后可重复提交")
	case errors.Is(err, service.ErrScopeRequired):
		response.BadRequest(c, 20003, "该班次属于重复系列，请指定操作范围")
	case errors.Is(err, service.ErrInvalidScope):
		response.BadRequest(c, 20004, "无效的操作范围")
	case errors.Is(err, service.ErrInvalidShift):
		response.BadRequest(c, 20005, "班次数据不合法")
	case errors.Is(err, service.ErrInvalidMonth):
		response.BadRequest(c, 20006, "月份格式应为 YYYY-MM")
	case errors.Is(err, service.ErrShiftTypeNotFound):
		response.BadRequest(c, 21001, "班次类型不存在")
	default:
		response.InternalError(c)
	}
}
