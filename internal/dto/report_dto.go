package dto

// ReportQuery 报告查询参数, date 与 scan_id 同时传入时返回单次扫描详情
type ReportQuery struct {
	Date   string `form:"date" binding:"omitempty,max=64"`
	ScanID string `form:"scan_id" binding:"omitempty,max=128"`
}

// IsDetail 是否为详情查询
func (q *ReportQuery) IsDetail() bool {
	return q.Date != "" || q.ScanID != ""
}
