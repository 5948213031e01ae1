package dto

// ── 导出/导入模块 DTO ──

// ExportRequest 导出查询参数
// view=list 导出列表视图（过滤+排序），view=grid 导出 month 指定月份的月视图
type ExportRequest struct {
	ShiftListRequest
	Format string `form:"format" binding:"required,oneof=csv xlsx ics"`
	View   string `form:"view"   binding:"omitempty,oneof=list grid"`
	Month  string `form:"month"  binding:"omitempty,ym"`
}

// ImportICSRequest ICS 导入参数
// 文件通过 multipart 字段 file 上传；未上传文件时从 url 获取（支持 webcal://）
type ImportICSRequest struct {
	TypeID string `form:"type_id" json:"type_id" binding:"required,max=64"`
	URL    string `form:"url"     json:"url"     binding:"omitempty,max=2048"`
}

// ImportICSResponse ICS 导入结果
type ImportICSResponse struct {
	Created int `json:"created"` // 新增的班次数（含系列展开）
	Series  int `json:"series"`  // 新建的系列数
	Skipped int `json:"skipped"` // 无法识别而跳过的事件数
}
