package dto

import "encoding/json"

// StartScanRequest 创建扫描请求
type StartScanRequest struct {
	BranchName *string `json:"branch_name" binding:"omitempty,max=255"`
	PRKey      *string `json:"pr_key" binding:"omitempty,max=100"`
}

// FinalizeScanRequest 更新扫描, 状态不为 running 时自动写入 finished_at
type FinalizeScanRequest struct {
	Status          *string `json:"status" binding:"omitempty,oneof=running passed passed_with_warnings failed"`
	ErrorsCount     *int    `json:"errors_count" binding:"omitempty,min=0"`
	WarningsCount   *int    `json:"warnings_count" binding:"omitempty,min=0"`
	DurationSeconds *int    `json:"duration_seconds" binding:"omitempty,min=0"`
}

// RecordPhaseRequest 上报单个工具结果
type RecordPhaseRequest struct {
	Tool       string          `json:"tool" binding:"required,max=50"`
	Status     string          `json:"status" binding:"required,oneof=pass fail warn skip"`
	Summary    string          `json:"summary"`
	Details    json.RawMessage `json:"details" swaggertype:"object"` // 数组或对象, 默认 []
	DurationMs *int64          `json:"duration_ms" binding:"omitempty,min=0"`
}

// ScanResponse 扫描响应
type ScanResponse struct {
	ID              string  `json:"id"`
	ProjectID       string  `json:"project_id"`
	ScanCode        string  `json:"scan_code"`
	Status          string  `json:"status"`
	ErrorsCount     int     `json:"errors_count"`
	WarningsCount   int     `json:"warnings_count"`
	DurationSeconds *int    `json:"duration_seconds"`
	BranchName      *string `json:"branch_name"`
	PRKey           *string `json:"pr_key"`
	StartedAt       string  `json:"started_at"`
	FinishedAt      *string `json:"finished_at"`
	CreatedAt       string  `json:"created_at"`
}

// ScanDetailResponse 扫描详情, 包含阶段结果与所属项目
type ScanDetailResponse struct {
	ScanResponse
	Project      *ProjectSimpleResponse `json:"project,omitempty"`
	PhaseResults []*PhaseResultResponse `json:"phase_results"`
}

// PhaseResultResponse 阶段结果响应
type PhaseResultResponse struct {
	ID         string          `json:"id"`
	ScanID     string          `json:"scan_id"`
	Tool       string          `json:"tool"`
	Status     string          `json:"status"`
	Summary    string          `json:"summary"`
	Details    json.RawMessage `json:"details" swaggertype:"object"`
	DurationMs *int64          `json:"duration_ms"`
	CreatedAt  string          `json:"created_at"`
}
