package handler

import (
	"github.com/gin-gonic/gin"

	"quality-scanner/internal/dto"
	"quality-scanner/internal/service"
	pkgErrors "quality-scanner/pkg/errors"
	"quality-scanner/pkg/utils"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// List 报告归档查询
// @Summary 报告归档: 无参数返回全部扫描摘要, 传 date 与 scan_id 返回单次扫描的全部报告
// @Tags Report
// @Produce json
// @Param date query string false "日期目录"
// @Param scan_id query string false "扫描目录"
// @Success 200 {object} utils.Response{data=[]archive.ScanSummary}
// @Failure 404 {object} utils.Response
// @Router /api/v1/reports [get]
func (h *ReportHandler) List(c *gin.Context) {
	var query dto.ReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.ErrorWithDetail(c, pkgErrors.CodeBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	if !query.IsDetail() {
		summaries, err := h.reportService.ListScans()
		if err != nil {
			utils.Error(c, err)
			return
		}
		utils.Success(c, summaries)
		return
	}

	if query.Date == "" || query.ScanID == "" {
		utils.ErrorWithCode(c, pkgErrors.CodeBadRequest, "date 与 scan_id 必须同时传入")
		return
	}

	detail, err := h.reportService.GetScanDetail(query.Date, query.ScanID)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, detail)
}
