package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ScanTableName        = "scans"
	PhaseResultTableName = "phase_results"
)

// Scan 一次质量扫描
type Scan struct {
	IDModel
	ProjectID       string     `gorm:"size:36;not null;index" json:"project_id"`
	ScanCode        string     `gorm:"size:32;not null;index" json:"scan_code"`
	Status          string     `gorm:"size:32;not null;index" json:"status"` // running/passed/passed_with_warnings/failed
	ErrorsCount     int        `gorm:"not null" json:"errors_count"`
	WarningsCount   int        `gorm:"not null" json:"warnings_count"`
	DurationSeconds *int       `json:"duration_seconds"`
	BranchName      *string    `gorm:"size:255" json:"branch_name"`
	PRKey           *string    `gorm:"column:pr_key;size:100" json:"pr_key"`
	StartedAt       time.Time  `gorm:"not null" json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at"`

	// 关联关系
	Project      *Project      `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	PhaseResults []PhaseResult `gorm:"foreignKey:ScanID;constraint:OnDelete:CASCADE" json:"phase_results,omitempty"`
}

func (Scan) TableName() string {
	return ScanTableName
}

// PhaseResult 单个工具阶段的结果, 只追加
type PhaseResult struct {
	IDModel
	ScanID     string         `gorm:"size:36;not null;index" json:"scan_id"`
	Tool       string         `gorm:"size:50;not null" json:"tool"`
	Status     string         `gorm:"size:20;not null" json:"status"` // pass/fail/warn/skip
	Summary    string         `gorm:"type:text;not null" json:"summary"`
	Details    datatypes.JSON `json:"details"`
	DurationMs *int64         `json:"duration_ms"`
}

func (PhaseResult) TableName() string {
	return PhaseResultTableName
}
