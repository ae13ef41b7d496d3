package service

import (
	"go.uber.org/zap"

	"quality-scanner/internal/archive"
	"quality-scanner/internal/pkg/logger"
)

// ReportService 报告归档只读查询, 与数据库中的扫描记录相互独立
type ReportService interface {
	ListScans() ([]*archive.ScanSummary, error)
	GetScanDetail(date, scanID string) (map[string]interface{}, error)
}

type reportService struct {
	reader *archive.Reader
}

func NewReportService(reader *archive.Reader) ReportService {
	return &reportService{reader: reader}
}

func (s *reportService) ListScans() ([]*archive.ScanSummary, error) {
	summaries, err := s.reader.ListScans()
	if err != nil {
		return nil, err
	}
	logger.Debug("读取报告列表", zap.String("root", s.reader.Root()), zap.Int("count", len(summaries)))
	return summaries, nil
}

func (s *reportService) GetScanDetail(date, scanID string) (map[string]interface{}, error) {
	return s.reader.GetScanDetail(date, scanID)
}
