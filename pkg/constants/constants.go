package constants

import "github.com/samber/lo"

// ScanStatus 扫描状态
const (
	ScanStatusRunning            = "running"
	ScanStatusPassed             = "passed"
	ScanStatusPassedWithWarnings = "passed_with_warnings"
	ScanStatusFailed             = "failed"
	ScanStatusSkipped            = "skipped" // 仅供外部读取方使用, 引擎本身不会写入
)

// PhaseStatus 阶段(工具)结果状态
const (
	PhaseStatusPass = "pass"
	PhaseStatusFail = "fail"
	PhaseStatusWarn = "warn"
	PhaseStatusSkip = "skip"
)

var finalizableScanStatuses = []string{
	ScanStatusRunning,
	ScanStatusPassed,
	ScanStatusPassedWithWarnings,
	ScanStatusFailed,
}

// IsTerminalScanStatus 是否为终态
func IsTerminalScanStatus(status string) bool {
	return status != ScanStatusRunning
}

// IsFinalizableScanStatus 扫描更新接口允许写入的状态
func IsFinalizableScanStatus(status string) bool {
	return lo.Contains(finalizableScanStatuses, status)
}

// 项目默认值
const (
	DefaultSonarHostURL      = "http://sonarqube:9000"
	DefaultAPILintSeverity   = "warn"
	DefaultInfraScanSeverity = "HIGH"
)

// 扫描
const (
	ScanCodeLayout     = "20060102150405"
	ScanListLimit      = 50
	ArchiveRawPreview  = 500
	ArchiveSummaryFile = "summary.json"
	ArchiveExtension   = ".json"
)

// 报告归档默认值
const (
	ArchiveUnknownProject = "unknown"
	ArchiveUnknownGate    = "UNKNOWN"
	ArchiveInvalidJSON    = "Invalid JSON"
	ArchiveUnreadable     = "Unreadable file"
)

// JWT 相关
const (
	JWTContextKey = "jwt_client"
	JWTTypeAccess = "access"
	ContextClient = "client"
)

// 定时任务名称
const (
	JobStaleScanReaper = "stale_scan_reaper"
)

// HTTP Header
const (
	HeaderAuthorization = "Authorization"
	HeaderBearerPrefix  = "Bearer "
)
