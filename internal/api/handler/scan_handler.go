package handler

import (
	"github.com/gin-gonic/gin"

	"quality-scanner/internal/dto"
	"quality-scanner/internal/service"
	"quality-scanner/pkg/utils"
)

type ScanHandler struct {
	scanService service.ScanService
}

func NewScanHandler(scanService service.ScanService) *ScanHandler {
	return &ScanHandler{
		scanService: scanService,
	}
}

// Start 开始扫描
// @Summary 为项目创建扫描
// @Tags Scan
// @Accept json
// @Produce json
// @Param id path string true "项目ID"
// @Param request body dto.StartScanRequest false "分支与PR"
// @Success 201 {object} utils.Response{data=dto.ScanResponse}
// @Failure 404 {object} utils.Response
// @Router /api/v1/projects/{id}/scans [post]
func (h *ScanHandler) Start(c *gin.Context) {
	projectID, ok := bindID(c)
	if !ok {
		return
	}

	var req dto.StartScanRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	scan, err := h.scanService.Start(projectID, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Created(c, scan)
}

// ListByProject 项目扫描记录
// @Summary 项目扫描记录(最近50次, 最新的在前)
// @Tags Scan
// @Produce json
// @Param id path string true "项目ID"
// @Success 200 {object} utils.Response{data=[]dto.ScanResponse}
// @Router /api/v1/projects/{id}/scans [get]
func (h *ScanHandler) ListByProject(c *gin.Context) {
	projectID, ok := bindID(c)
	if !ok {
		return
	}

	scans, err := h.scanService.ListByProject(projectID)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, scans)
}

// GetLatest 项目最新扫描
// @Summary 项目最新扫描, 没有扫描时 data 为 null
// @Tags Scan
// @Produce json
// @Param id path string true "项目ID"
// @Success 200 {object} utils.Response{data=dto.ScanDetailResponse}
// @Router /api/v1/projects/{id}/scans/latest [get]
func (h *ScanHandler) GetLatest(c *gin.Context) {
	projectID, ok := bindID(c)
	if !ok {
		return
	}

	scan, err := h.scanService.GetLatest(projectID)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, scan)
}

// GetByID 扫描详情
// @Summary 扫描详情(包含阶段结果与项目)
// @Tags Scan
// @Produce json
// @Param id path string true "扫描ID"
// @Success 200 {object} utils.Response{data=dto.ScanDetailResponse}
// @Router /api/v1/scans/{id} [get]
func (h *ScanHandler) GetByID(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	scan, err := h.scanService.GetByID(id)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, scan)
}

// Finalize 更新扫描
// @Summary 更新扫描, 状态不为 running 时写入 finished_at
// @Tags Scan
// @Accept json
// @Produce json
// @Param id path string true "扫描ID"
// @Param request body dto.FinalizeScanRequest true "更新扫描请求"
// @Success 200 {object} utils.Response{data=dto.ScanResponse}
// @Router /api/v1/scans/{id} [patch]
func (h *ScanHandler) Finalize(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	var req dto.FinalizeScanRequest
	if !bindJSON(c, &req) {
		return
	}

	scan, err := h.scanService.Finalize(id, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, scan)
}

// RecordPhase 上报阶段结果
// @Summary 上报工具阶段结果
// @Tags Scan
// @Accept json
// @Produce json
// @Param id path string true "扫描ID"
// @Param request body dto.RecordPhaseRequest true "阶段结果"
// @Success 201 {object} utils.Response{data=dto.PhaseResultResponse}
// @Router /api/v1/scans/{id}/phases [post]
func (h *ScanHandler) RecordPhase(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	var req dto.RecordPhaseRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.scanService.RecordPhase(id, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Created(c, result)
}

// ListPhases 阶段结果列表
// @Summary 阶段结果列表(按创建时间升序)
// @Tags Scan
// @Produce json
// @Param id path string true "扫描ID"
// @Success 200 {object} utils.Response{data=[]dto.PhaseResultResponse}
// @Router /api/v1/scans/{id}/phases [get]
func (h *ScanHandler) ListPhases(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	results, err := h.scanService.ListPhases(id)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, results)
}
