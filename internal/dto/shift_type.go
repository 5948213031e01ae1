package dto

// ── 班次类型模块 DTO ──

// ShiftTypeItem 整体替换时的单个类型
type ShiftTypeItem struct {
	ID    string `json:"id"    binding:"required,max=64"`
	Name  string `json:"name"  binding:"required,max=50"`
	Color string `json:"color" binding:"required,hexcolor"`
	Icon  string `json:"icon"  binding:"required,max=16"`
}

// ReplaceShiftTypesRequest 整体替换类型列表
type ReplaceShiftTypesRequest struct {
	Types []ShiftTypeItem `json:"types" binding:"required,dive"`
}

// CreateShiftTypeRequest 新建类型请求
type CreateShiftTypeRequest struct {
	Name  string `json:"name"  binding:"required,max=50"`
	Color string `json:"color" binding:"required,hexcolor"`
	Icon  string `json:"icon"  binding:"required,max=16"`
}

// UpdateShiftTypeRequest 更新类型请求
type UpdateShiftTypeRequest struct {
	Name  *string `json:"name"  binding:"omitempty,max=50"`
	Color *string `json:"color" binding:"omitempty,hexcolor"`
	Icon  *string `json:"icon"  binding:"omitempty,max=16"`
}

// ShiftTypeResponse 类型信息响应
type ShiftTypeResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}
