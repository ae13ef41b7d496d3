package service

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"quality-scanner/internal/adapter/notification"
	"quality-scanner/internal/dto"
	"quality-scanner/internal/model"
	"quality-scanner/internal/pkg/logger"
	"quality-scanner/internal/repository"
	"quality-scanner/pkg/constants"
	pkgErrors "quality-scanner/pkg/errors"
)

// ScanService 扫描生命周期
//
// 状态: running → passed / passed_with_warnings / failed.
// finished_at 不为空当且仅当 status 不是 running.
type ScanService interface {
	Start(projectID string, req *dto.StartScanRequest) (*dto.ScanResponse, error)
	GetByID(id string) (*dto.ScanDetailResponse, error)
	ListByProject(projectID string) ([]*dto.ScanResponse, error)
	GetLatest(projectID string) (*dto.ScanDetailResponse, error)
	Finalize(id string, req *dto.FinalizeScanRequest) (*dto.ScanResponse, error)
	RecordPhase(scanID string, req *dto.RecordPhaseRequest) (*dto.PhaseResultResponse, error)
	ListPhases(scanID string) ([]*dto.PhaseResultResponse, error)
	ReapStale(timeout time.Duration) (int, error)
}

type scanService struct {
	repo        repository.ScanRepository
	phaseRepo   repository.PhaseResultRepository
	projectRepo repository.ProjectRepository
	notifier    notification.Notifier
}

// ScanServiceOption 可选依赖
type ScanServiceOption func(*scanService)

// WithNotifier 扫描从 running 进入终态时发送通知
func WithNotifier(n notification.Notifier) ScanServiceOption {
	return func(s *scanService) {
		s.notifier = n
	}
}

const notifyTimeout = 10 * time.Second

// NewScanService 创建扫描服务
func NewScanService(repo repository.ScanRepository, phaseRepo repository.PhaseResultRepository,
	projectRepo repository.ProjectRepository, opts ...ScanServiceOption) ScanService {
	s := &scanService{
		repo:        repo,
		phaseRepo:   phaseRepo,
		projectRepo: projectRepo,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start 创建扫描, scan_code 为当前 UTC 时间, 例如 20240101103000
func (s *scanService) Start(projectID string, req *dto.StartScanRequest) (*dto.ScanResponse, error) {
	if _, err := s.projectRepo.FindByID(projectID); err != nil {
		return nil, notFoundAs(err, "项目不存在: %s", projectID)
	}

	now := timeNow()
	scan := &model.Scan{
		ProjectID:  projectID,
		ScanCode:   now.UTC().Format(constants.ScanCodeLayout),
		Status:     constants.ScanStatusRunning,
		BranchName: req.BranchName,
		PRKey:      req.PRKey,
		StartedAt:  now,
	}
	scan.CreatedAt = now

	if err := s.repo.Create(scan); err != nil {
		return nil, err
	}

	logger.Info("扫描已开始", zap.String("scan_id", scan.ID), zap.String("project_id", projectID),
		zap.String("scan_code", scan.ScanCode))
	return toScanResponse(scan), nil
}

// GetByID 扫描详情, 包含阶段结果与所属项目
func (s *scanService) GetByID(id string) (*dto.ScanDetailResponse, error) {
	scan, err := s.repo.FindByID(id,
		repository.WithPreload("Project"),
		repository.WithOrderedPreload("PhaseResults", "created_at ASC"),
	)
	if err != nil {
		return nil, notFoundAs(err, "扫描不存在: %s", id)
	}
	return toScanDetailResponse(scan), nil
}

// ListByProject 最近 50 次扫描, 最新的在前
func (s *scanService) ListByProject(projectID string) ([]*dto.ScanResponse, error) {
	if _, err := s.projectRepo.FindByID(projectID); err != nil {
		return nil, notFoundAs(err, "项目不存在: %s", projectID)
	}

	scans, err := s.repo.ListByProjectID(projectID, constants.ScanListLimit)
	if err != nil {
		return nil, err
	}
	return lo.Map(scans, func(scan *model.Scan, _ int) *dto.ScanResponse {
		return toScanResponse(scan)
	}), nil
}

// GetLatest 项目最新一次扫描, 没有扫描时返回 nil
func (s *scanService) GetLatest(projectID string) (*dto.ScanDetailResponse, error) {
	if _, err := s.projectRepo.FindByID(projectID); err != nil {
		return nil, notFoundAs(err, "项目不存在: %s", projectID)
	}

	latest, err := s.repo.FindLatestByProjectID(projectID)
	if err != nil {
		if pkgErrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	phases, err := s.phaseRepo.ListByScanID(latest.ID)
	if err != nil {
		return nil, err
	}
	latest.PhaseResults = lo.FromSlicePtr(phases)
	return toScanDetailResponse(latest), nil
}

// Finalize 部分更新扫描. 结果状态不是 running 时每次调用都刷新 finished_at, 重复调用不报错(后写覆盖)
func (s *scanService) Finalize(id string, req *dto.FinalizeScanRequest) (*dto.ScanResponse, error) {
	scan, err := s.repo.FindByID(id)
	if err != nil {
		return nil, notFoundAs(err, "扫描不存在: %s", id)
	}
	wasRunning := scan.Status == constants.ScanStatusRunning

	if req.Status != nil {
		if !constants.IsFinalizableScanStatus(*req.Status) {
			return nil, pkgErrors.BadRequest("不支持的扫描状态: %s", *req.Status)
		}
		scan.Status = *req.Status
	}
	if req.ErrorsCount != nil {
		scan.ErrorsCount = *req.ErrorsCount
	}
	if req.WarningsCount != nil {
		scan.WarningsCount = *req.WarningsCount
	}
	if req.DurationSeconds != nil {
		scan.DurationSeconds = req.DurationSeconds
	}

	if constants.IsTerminalScanStatus(scan.Status) {
		scan.FinishedAt = lo.ToPtr(timeNow())
	} else {
		scan.FinishedAt = nil
	}

	if err := s.repo.Update(scan); err != nil {
		return nil, err
	}

	logger.Info("扫描已更新", zap.String("scan_id", scan.ID), zap.String("status", scan.Status))

	if wasRunning && constants.IsTerminalScanStatus(scan.Status) {
		s.notifyFinished(scan)
	}
	return toScanResponse(scan), nil
}

// notifyFinished 通知失败只记录日志
func (s *scanService) notifyFinished(scan *model.Scan) {
	if s.notifier == nil {
		return
	}

	projectName := scan.ProjectID
	if project, err := s.projectRepo.FindByID(scan.ProjectID); err == nil {
		projectName = project.Name
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if err := s.notifier.SendScanNotification(ctx, scan, projectName); err != nil {
		logger.Warn("扫描结束通知发送失败", zap.String("scan_id", scan.ID), zap.Error(err))
	}
}

// RecordPhase 追加阶段结果, 不修改扫描的计数与状态
func (s *scanService) RecordPhase(scanID string, req *dto.RecordPhaseRequest) (*dto.PhaseResultResponse, error) {
	if _, err := s.repo.FindByID(scanID); err != nil {
		return nil, notFoundAs(err, "扫描不存在: %s", scanID)
	}

	details, err := normalizeDetails(req.Details)
	if err != nil {
		return nil, err
	}

	result := &model.PhaseResult{
		ScanID:     scanID,
		Tool:       req.Tool,
		Status:     req.Status,
		Summary:    req.Summary,
		Details:    details,
		DurationMs: req.DurationMs,
	}
	result.CreatedAt = timeNow()

	if err := s.phaseRepo.Create(result); err != nil {
		return nil, err
	}

	logger.Debug("阶段结果已记录", zap.String("scan_id", scanID), zap.String("tool", result.Tool),
		zap.String("status", result.Status))
	return toPhaseResultResponse(result), nil
}

// ListPhases 按创建时间升序
func (s *scanService) ListPhases(scanID string) ([]*dto.PhaseResultResponse, error) {
	if _, err := s.repo.FindByID(scanID); err != nil {
		return nil, notFoundAs(err, "扫描不存在: %s", scanID)
	}

	results, err := s.phaseRepo.ListByScanID(scanID)
	if err != nil {
		return nil, err
	}
	return lo.Map(results, func(r *model.PhaseResult, _ int) *dto.PhaseResultResponse {
		return toPhaseResultResponse(r)
	}), nil
}

// ReapStale 将超时仍在运行的扫描置为 failed, 返回处理数量
func (s *scanService) ReapStale(timeout time.Duration) (int, error) {
	stale, err := s.repo.ListRunningStartedBefore(timeNow().Add(-timeout))
	if err != nil {
		return 0, err
	}

	reaped := 0
	for _, scan := range stale {
		// 列表之后扫描可能已被上报结束
		ok, err := s.repo.MarkFailedIfRunning(scan.ID, timeNow())
		if err != nil {
			logger.Error("回收超时扫描失败", zap.String("scan_id", scan.ID), zap.Error(err))
			continue
		}
		if !ok {
			logger.Debug("扫描已结束, 跳过回收", zap.String("scan_id", scan.ID))
			continue
		}
		reaped++
		logger.Warn("超时扫描已置为失败", zap.String("scan_id", scan.ID),
			zap.String("project_id", scan.ProjectID), zap.Time("started_at", scan.StartedAt))

		if failed, err := s.repo.FindByID(scan.ID); err == nil {
			s.notifyFinished(failed)
		}
	}
	return reaped, nil
}

// normalizeDetails details 只接受数组或对象, 为空时存为 []
func normalizeDetails(raw json.RawMessage) (datatypes.JSON, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return datatypes.JSON("[]"), nil
	}
	if (trimmed[0] != '[' && trimmed[0] != '{') || !json.Valid(trimmed) {
		return nil, pkgErrors.BadRequest("details 必须是数组或对象")
	}
	return datatypes.JSON(trimmed), nil
}

func toScanResponse(scan *model.Scan) *dto.ScanResponse {
	return &dto.ScanResponse{
		ID:              scan.ID,
		ProjectID:       scan.ProjectID,
		ScanCode:        scan.ScanCode,
		Status:          scan.Status,
		ErrorsCount:     scan.ErrorsCount,
		WarningsCount:   scan.WarningsCount,
		DurationSeconds: scan.DurationSeconds,
		BranchName:      scan.BranchName,
		PRKey:           scan.PRKey,
		StartedAt:       formatTime(scan.StartedAt),
		FinishedAt:      formatTimePtr(scan.FinishedAt),
		CreatedAt:       formatTime(scan.CreatedAt),
	}
}

func toScanDetailResponse(scan *model.Scan) *dto.ScanDetailResponse {
	resp := &dto.ScanDetailResponse{
		ScanResponse: *toScanResponse(scan),
		PhaseResults: lo.Map(scan.PhaseResults, func(r model.PhaseResult, _ int) *dto.PhaseResultResponse {
			return toPhaseResultResponse(&r)
		}),
	}
	if scan.Project != nil {
		resp.Project = toProjectSimpleResponse(scan.Project)
	}
	return resp
}

func toPhaseResultResponse(result *model.PhaseResult) *dto.PhaseResultResponse {
	details := json.RawMessage(result.Details)
	if len(details) == 0 {
		details = json.RawMessage("[]")
	}
	return &dto.PhaseResultResponse{
		ID:         result.ID,
		ScanID:     result.ScanID,
		Tool:       result.Tool,
		Status:     result.Status,
		Summary:    result.Summary,
		Details:    details,
		DurationMs: result.DurationMs,
		CreatedAt:  formatTime(result.CreatedAt),
	}
}
