package repository

import (
	"gorm.io/gorm"

	"quality-scanner/internal/model"
	pkgErrors "quality-scanner/pkg/errors"
)

// PhaseResultRepository 阶段结果只追加, 不提供更新与删除
type PhaseResultRepository interface {
	Create(result *model.PhaseResult) error
	ListByScanID(scanID string) ([]*model.PhaseResult, error)
}

type phaseResultRepository struct {
	db *gorm.DB
}

func NewPhaseResultRepository(db *gorm.DB) PhaseResultRepository {
	return &phaseResultRepository{db: db}
}

func (r *phaseResultRepository) Create(result *model.PhaseResult) error {
	if err := r.db.Create(result).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建阶段结果失败", err)
	}
	return nil
}

// ListByScanID 按创建时间升序
func (r *phaseResultRepository) ListByScanID(scanID string) ([]*model.PhaseResult, error) {
	results := make([]*model.PhaseResult, 0)
	if err := r.db.Where("scan_id = ?", scanID).Order("created_at ASC").Find(&results).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询阶段结果失败", err)
	}
	return results, nil
}
